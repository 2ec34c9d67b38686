package sharing

import (
	"fmt"
	"strings"

	"secureshare/secure"
)

// UnsupportedLayerError is returned when a plaintext layer's type has no
// counterpart in the secure layer registry. Sharing stops at the first
// unsupported layer; there is no partial or fallback construction.
type UnsupportedLayerError struct {
	Type string
}

func (e *UnsupportedLayerError) Error() string {
	return fmt.Sprintf("the secure runtime does not support the %s layer (supported: %s)",
		e.Type, strings.Join(secure.SupportedLayers(), ", "))
}
