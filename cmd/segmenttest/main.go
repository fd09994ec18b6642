// Command segmenttest runs region detection and symbol segmentation on an
// image and writes each symbol mask to disk, for tuning the thresholds.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"mathscan/internal/classify"
	"mathscan/internal/frame"
	"mathscan/internal/segment"
	"mathscan/internal/vision"

	"gocv.io/x/gocv"
)

func main() {
	imagePath := flag.String("image", "", "Path to exercise image")
	outDir := flag.String("out", "", "Directory for symbol masks (skipped if empty)")
	liveThreshold := flag.Int("live-threshold", 125, "Binarization threshold for region detection")
	segThreshold := flag.Int("seg-threshold", 120, "Binarization threshold for segmentation")
	crop := flag.Bool("crop", true, "Segment only the detected region")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: segmenttest -image <path> [-out dir] [-live-threshold 125] [-seg-threshold 120] [-crop=false]")
		os.Exit(1)
	}

	img, err := frame.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	defer img.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", img.Width(), img.Height())

	params := vision.DefaultParams().WithThresholds(*liveThreshold, *segThreshold)
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  Thresholds: live %d, segment %d\n", params.LiveThreshold, params.SegmentThreshold)
	fmt.Printf("  Region area: (%d, %d) px², padding %d\n", params.RegionMinArea, params.RegionMaxArea, params.RegionPadding)
	fmt.Printf("  Symbol min area: %d px²\n", params.SymbolMinArea)
	fmt.Printf("  Operator aspect: > %.1f or < %.1f\n", params.OperatorWideRatio, params.OperatorNarrowRatio)

	target := img
	if *crop {
		region, ok, err := vision.DetectRegion(img, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Region detection failed: %v\n", err)
			os.Exit(1)
		}
		if ok {
			fmt.Printf("\nRegion: x=%d y=%d w=%d h=%d\n", region.X, region.Y, region.Width, region.Height)
			cropped, err := img.Crop(region)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Crop failed: %v\n", err)
				os.Exit(1)
			}
			defer cropped.Close()
			target = cropped
		} else {
			fmt.Printf("\nNo region detected, segmenting the whole image\n")
		}
	}

	symbols, err := segment.Segment(target, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Segmentation failed: %v\n", err)
		os.Exit(1)
	}
	defer segment.Close(symbols)

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outDir, err)
			os.Exit(1)
		}
	}

	fmt.Printf("\nSegmented %d symbols:\n", len(symbols))
	fmt.Printf("%-4s %6s %6s %6s %6s %8s %-9s %s\n", "#", "X", "Y", "W", "H", "Aspect", "Kind", "Op")
	for i, s := range symbols {
		op := ""
		if s.Kind == segment.KindOperator {
			if s.Parts == 2 {
				op = "="
			} else if c, err := classify.ClassifyOperator(s.Image); err == nil {
				op = c
			}
		}
		fmt.Printf("%-4d %6d %6d %6d %6d %8.2f %-9s %s\n",
			i, s.Box.X, s.Box.Y, s.Box.Width, s.Box.Height, s.Box.AspectRatio(), s.Kind, op)

		if *outDir != "" {
			path := filepath.Join(*outDir, fmt.Sprintf("symbol_%02d_%s.png", i, s.Kind))
			if !gocv.IMWrite(path, s.Image.Mat()) {
				fmt.Fprintf(os.Stderr, "Failed to write %s\n", path)
			}
		}
	}
}
