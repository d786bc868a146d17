//go:build bench

package html2png

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/disintegration/imaging"
)

// BenchmarkContextPoolAcquireRelease benchmarks one page cycle.
// Uses a stub session to avoid browser overhead.
func BenchmarkContextPoolAcquireRelease(b *testing.B) {
	pool := newContextPool(&stubSession{})
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		page, err := pool.Acquire(ctx)
		if err != nil {
			b.Fatal(err)
		}
		_ = pool.Release(page)
	}

	b.StopTimer()
	_ = pool.Close()
}

// BenchmarkFitRegion compares the untouched path with the crop path.
func BenchmarkFitRegion(b *testing.B) {
	region := DefaultRegion()
	sizes := []int{1080, 2160}

	for _, size := range sizes {
		var buf bytes.Buffer
		img := imaging.New(size, size, color.NRGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xff})
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			b.Fatal(err)
		}
		data := buf.Bytes()

		b.Run(captureName(image.Pt(size, size)), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := fitRegion(data, region); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func captureName(p image.Point) string {
	return fmt.Sprintf("%dx%d", p.X, p.Y)
}

// BenchmarkCompareNames benchmarks sorting a deck of numbered cards.
func BenchmarkCompareNames(b *testing.B) {
	counts := []int{10, 100, 1000}

	for _, n := range counts {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("%04d_card.html", n-i)
		}

		b.Run(fmt.Sprintf("names_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				sorted := slices.Clone(names)
				slices.SortFunc(sorted, CompareNames)
			}
		})
	}
}
