// secureshare-serve: share a trained model under a secure protocol and
// serve prediction requests over TCP
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"secureshare/nn"
	"secureshare/nn/layers"
	"secureshare/sharing"
	"secureshare/utils"
)

var (
	weightsFile = flag.String("weights", "", "Weights JSON file")
	archStr     = flag.String("arch", "4 3", "Architecture for demo mode, e.g. \"784 128 10\"")
	protName    = flag.String("prot", "ckks", "Protocol: ckks, ckks-light")
	addr        = flag.String("addr", "127.0.0.1:7010", "Listen address")
	steps       = flag.Int("steps", 5, "Requests to serve before exiting")
	verbose     = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	log("secureshare server starting (prot=%s, addr=%s)", *protName, *addr)

	model, err := buildModel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building model: %v\n", err)
		os.Exit(1)
	}
	log("Model ready (%d layers)", len(model.Layers()))

	stats := &utils.ServeStats{Steps: *steps}

	shareStart := time.Now()
	served, err := sharing.Share(model, sharing.WithProtocolName(*protName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sharing model: %v\n", err)
		os.Exit(1)
	}
	defer served.Close()
	stats.ShareTime = time.Since(shareStart)
	log("Model shared (input=%v, output=%v)", served.Server.InputShape(), served.Server.OutputShape())

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listening on %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer listener.Close()
	go served.Server.AcceptLoop(listener)
	log("Waiting for clients on %s...", *addr)

	serveStart := time.Now()
	if err := sharing.Serve(served, *steps); err != nil {
		fmt.Fprintf(os.Stderr, "Serve error: %v\n", err)
		os.Exit(1)
	}
	stats.TotalTime = time.Since(serveStart)

	utils.PrintServeStats(stats)
	log("Server done")
}

// buildModel loads weights from -weights, or builds a random demo model
// from -arch.
func buildModel() (*nn.Sequential, error) {
	if *weightsFile != "" {
		weights, err := utils.LoadWeights(*weightsFile)
		if err != nil {
			return nil, err
		}
		return buildFromWeights(weights)
	}

	arch, err := utils.ParseArchitecture(*archStr)
	if err != nil {
		return nil, fmt.Errorf("bad -arch: %w", err)
	}
	cfg := &utils.ServeConfig{Architecture: arch, Protocol: *protName, Steps: *steps, Addr: *addr}
	if err := utils.ValidateServeConfig(cfg); err != nil {
		return nil, err
	}

	model := nn.NewSequential()
	for i := 0; i+1 < len(arch); i++ {
		opts := []layers.DenseOption{}
		if i == 0 {
			opts = append(opts, layers.WithBatchInputShape(1, arch[0]))
		}
		if i+2 < len(arch) {
			opts = append(opts, layers.WithActivation("relu"))
		}
		model.Add(layers.NewDense(arch[i], arch[i+1], opts...))
	}
	return model, nil
}

// buildFromWeights rebuilds a dense stack from a saved weight file,
// preserving layer order.
func buildFromWeights(weights *utils.ModelWeights) (*nn.Sequential, error) {
	order := weights.LayerOrder
	if order == nil {
		for name := range weights.Layers {
			order = append(order, name)
		}
	}

	model := nn.NewSequential()
	for i, name := range order {
		lw, ok := weights.Layers[name]
		if !ok {
			return nil, fmt.Errorf("weights file: layer %q in order but not in layers", name)
		}
		if lw.Weight == nil {
			continue
		}
		kernel := utils.WeightDataToTensor(lw.Weight)
		if len(kernel.Shape) != 2 {
			return nil, fmt.Errorf("layer %q: kernel must be 2-D, got %v", name, kernel.Shape)
		}
		units, inputDim := kernel.Shape[0], kernel.Shape[1]

		opts := []layers.DenseOption{
			layers.WithName(name),
			layers.WithKernelInitializer(nn.NewConstant(kernel)),
		}
		if i == 0 {
			opts = append(opts, layers.WithBatchInputShape(1, inputDim))
		}
		if lw.Bias != nil {
			opts = append(opts, layers.WithBiasInitializer(nn.NewConstant(utils.WeightDataToTensor(lw.Bias))))
		} else {
			opts = append(opts, layers.WithoutBias())
		}
		if i+1 < len(order) {
			opts = append(opts, layers.WithActivation("relu"))
		}
		model.Add(layers.NewDense(inputDim, units, opts...))
	}
	if len(model.Layers()) == 0 {
		return nil, fmt.Errorf("weights file contains no dense layers")
	}
	return model, nil
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[SERVE] "+format+"\n", args...)
	}
}
