// Package gop splits an ordered frame sequence into consecutive,
// non-overlapping groups of pictures.
package gop

import "github.com/sirkaza/tilecodec/internal/frame"

// Group is one consecutive run of frames, in their original order.
type Group struct {
	Index  int // position of this group among all groups, 0-based
	Frames []frame.Named
}

// Partition splits frames into consecutive groups of size n, the final
// group possibly shorter. Input order is preserved.
func Partition(frames []frame.Named, n int) []Group {
	if n <= 0 {
		n = 1
	}
	var groups []Group
	for i := 0; i < len(frames); i += n {
		end := i + n
		if end > len(frames) {
			end = len(frames)
		}
		groups = append(groups, Group{
			Index:  len(groups),
			Frames: frames[i:end],
		})
	}
	return groups
}
