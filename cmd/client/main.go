// secureshare-client: send prediction requests to a secureshare server
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"secureshare/nn"
	"secureshare/serving"
	"secureshare/tensor"
)

var (
	addr      = flag.String("addr", "127.0.0.1:7010", "Server address")
	inputFile = flag.String("input", "", "Input JSON file (flat float array)")
	inputDim  = flag.Int("dim", 4, "Input dimension for random inputs")
	requests  = flag.Int("n", 1, "Number of requests to send")
	topK      = flag.Int("topk", 3, "Top predictions to show")
	seed      = flag.Int64("seed", 42, "Random seed")
	verbose   = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()
	rand.Seed(*seed)

	client, err := serving.Dial(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()
	log("Connected to %s", *addr)

	input, err := loadInput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < *requests; i++ {
		start := time.Now()
		output, err := client.Predict(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Predict error: %v\n", err)
			os.Exit(1)
		}
		log("Request %d answered in %.4fs", i+1, time.Since(start).Seconds())
		showResults(output, *topK)
	}
}

func loadInput() ([]float64, error) {
	if *inputFile != "" {
		data, err := os.ReadFile(*inputFile)
		if err != nil {
			return nil, err
		}
		var input []float64
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, err
		}
		return input, nil
	}
	input := make([]float64, *inputDim)
	for i := range input {
		input[i] = rand.Float64()
	}
	return input, nil
}

func showResults(predictions []float64, k int) {
	probs := nn.Softmax(tensor.NewWithData(predictions))
	indices := topKIndices(predictions, k)

	fmt.Printf("Top %d predictions:\n", len(indices))
	for i, idx := range indices {
		fmt.Printf("  %d. Class %d: %.4f\n", i+1, idx, probs.Data[idx])
	}
}

func topKIndices(vals []float64, k int) []int {
	if k > len(vals) {
		k = len(vals)
	}
	indices := make([]int, k)
	used := make(map[int]bool)
	for i := 0; i < k; i++ {
		maxIdx, maxVal := -1, math.Inf(-1)
		for j, v := range vals {
			if !used[j] && v > maxVal {
				maxVal, maxIdx = v, j
			}
		}
		indices[i] = maxIdx
		used[maxIdx] = true
	}
	return indices
}

func log(format string, args ...interface{}) {
	if *verbose {
		fmt.Fprintf(os.Stderr, "[CLIENT] "+format+"\n", args...)
	}
}
