package chunker

import (
	"fmt"

	"github.com/dmitrijs2005/coldvault/internal/common"
)

const (
	minChunkSize = common.MiB
	maxChunkSize = 4 * common.GiB
)

// AllowedChunkSizes lists the part sizes the service accepts, smallest first:
// every power of two from 1 MiB to 4 GiB.
func AllowedChunkSizes() []int64 {
	var sizes []int64
	for s := minChunkSize; s <= maxChunkSize; s *= 2 {
		sizes = append(sizes, s)
	}
	return sizes
}

// PlanChunkSize returns the smallest allowed part size that keeps the part
// count for an archive of the given size under common.MaxPartCount.
func PlanChunkSize(size int64) (int64, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: %d", common.ErrInvalidSize, size)
	}

	for _, c := range AllowedChunkSizes() {
		if size/c < common.MaxPartCount {
			return c, nil
		}
	}

	return 0, fmt.Errorf("%w: %d bytes exceeds %d parts of %d bytes",
		common.ErrArchiveTooLarge, size, common.MaxPartCount, maxChunkSize)
}
