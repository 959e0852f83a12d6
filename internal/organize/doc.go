// Package organize places scanned music files into the output tree.
//
// # Organizer
//
// The Organizer runs every file through the same steps:
//
//  1. Render the destination from the configured structure (the
//     compilation structure for "Various Artists" albums)
//  2. Fall back to the fallback structure, or skip, when metadata is missing
//  3. Sanitize the rendered path
//  4. Resolve the file's identity against the identity map
//  5. Copy or move the file
//
// Each file ends in exactly one outcome (moved, skipped, duplicate, failed).
//
// # Basic Usage
//
//	org := organize.New(fs, cfg, "/music/out", organize.Options{
//	    Mode:    organize.Copy,
//	    Workers: 8,
//	    Logger:  logger,
//	    OnProgress: func(event model.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    },
//	})
//
//	existing, _ := scanner.Scan(ctx, "/music/out")
//	org.Seed(existing.Entries)
//
//	result, err := org.Run(ctx, scanned.Entries)
//
// # Concurrency
//
// Files are processed by up to Options.Workers goroutines. Only identity
// bookkeeping is serialized; copies run in parallel. Two transfers that
// target the same destination path never overlap.
package organize
