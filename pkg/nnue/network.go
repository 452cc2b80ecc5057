// Package nnue implements the efficiently-updatable neural network evaluator: per-perspective
// accumulators maintained incrementally across moves, bucketed by king square, with a finny
// cache for cheap full-perspective refreshes.
package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// H is the hidden layer width.
const H = 1024

// NumBuckets is the number of king-bucket partitions.
const NumBuckets = 15

// NumPlanes is the number of (side, piece type) input planes: {own,opp} x {P,R,N,B,Q,K}.
const NumPlanes = 12

// Scale is the fixed-point divisor applied to the raw accumulated output.
const Scale = 16 * 512

// Network holds the quantized weights of a loaded NNUE evaluator.
type Network struct {
	// Weights is the first layer, laid out input-major: Weights[index*H+h].
	Weights []int16
	Biases  [H]int16

	// OutWeightsSTM/OutWeightsOpp are the two output-layer weight vectors, one per perspective
	// relative to the side to move.
	OutWeightsSTM [H]int16
	OutWeightsOpp [H]int16

	OutputBias int32
}

func inputDim() int { return NumBuckets * 64 * NumPlanes }

// LoadNetwork reads a quantized network file from path. Failure to open or
// parse is fatal to startup, per spec; callers surface the error rather than falling back.
func LoadNetwork(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: open %v: %w", path, err)
	}
	defer f.Close()
	return ReadNetwork(f)
}

// ReadNetwork parses a network from r using the binary layout in: input x buckets x H int16
// weights (row-major by index), H int16 biases, H int16 stm output weights, H int16 opponent
// output weights, one int32 output bias.
func ReadNetwork(r io.Reader) (*Network, error) {
	n := &Network{}
	dim := inputDim()
	n.Weights = make([]int16, dim*H)

	if err := binary.Read(r, binary.LittleEndian, n.Weights); err != nil {
		return nil, fmt.Errorf("nnue: read first-layer weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Biases); err != nil {
		return nil, fmt.Errorf("nnue: read biases: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutWeightsSTM); err != nil {
		return nil, fmt.Errorf("nnue: read stm output weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutWeightsOpp); err != nil {
		return nil, fmt.Errorf("nnue: read opponent output weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return nil, fmt.Errorf("nnue: read output bias: %w", err)
	}
	return n, nil
}

// Row returns the first-layer weight row for the given input index.
func (n *Network) Row(index int) []int16 {
	return n.Weights[index*H : index*H+H]
}
