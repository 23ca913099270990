package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/ManuelReschke/PixelDen/internal/pkg/cache"
	"github.com/ManuelReschke/PixelDen/internal/pkg/env"
	"github.com/ManuelReschke/PixelDen/internal/pkg/imageprocessor"
	"github.com/ManuelReschke/PixelDen/internal/pkg/jobqueue"
	"github.com/ManuelReschke/PixelDen/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/PixelDen/internal/pkg/storage"
	"github.com/ManuelReschke/PixelDen/internal/pkg/upload"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	cache.SetupCache()

	cfg, err := imageprocessor.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	pipeline, err := imageprocessor.NewPipeline(cfg)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	if err := pipeline.Init(); err != nil {
		log.Fatalf("Failed to initialize storage root: %v", err)
	}

	switch command {
	case "ingest":
		runIngest(pipeline)
	case "relocate":
		runRelocate(pipeline)
	case "delete":
		runDelete(pipeline)
	case "resolve":
		runResolve(pipeline)
	case "dims":
		runDims()
	case "meta":
		runMeta()
	case "stats":
		runStats(cfg)
	default:
		printUsage()
		os.Exit(1)
	}
}

func runIngest(pipeline *imageprocessor.Pipeline) {
	if len(os.Args) < 3 {
		log.Fatalf("Usage: pixeldenctl ingest <file> [-group G] [-item I]")
	}
	source := os.Args[2]

	groupID := ""
	itemID := uuid.New().String()
	args := os.Args[3:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-group":
			if i+1 >= len(args) {
				log.Fatalf("Missing value for -group")
			}
			i++
			groupID = groupArg(args[i])
		case "-item":
			if i+1 >= len(args) {
				log.Fatalf("Missing value for -item")
			}
			i++
			itemID = args[i]
		default:
			log.Fatalf("Unknown argument %q", args[i])
		}
	}

	if _, err := upload.ValidateSourceFile(source); err != nil {
		log.Fatalf("Rejected %s: %v", source, err)
	}

	// Stage a copy so consuming the temp file leaves the source untouched
	file, err := os.Open(source)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", source, err)
	}
	tempPath := filepath.Join(os.TempDir(), "pixelden-"+itemID+filepath.Ext(source))
	op, err := storage.SaveFile(file, tempPath)
	file.Close()
	if err != nil {
		log.Fatalf("Failed to stage %s: %v", source, err)
	}
	log.Printf("Staged %s (%d bytes)", tempPath, op.Bytes)

	task := pipeline.IngestAsync(tempPath, groupID, itemID)
	dims, err := task.Wait()
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}

	log.Printf("Ingested item %s (%dx%d)", itemID, dims.Width, dims.Height)
	log.Printf("Original: %s", pipeline.ResolvePath(groupID, itemID, "original"))
}

func runRelocate(pipeline *imageprocessor.Pipeline) {
	if len(os.Args) < 5 {
		log.Fatalf("Usage: pixeldenctl relocate <old-group> <new-group> <item>")
	}
	oldGroupID, newGroupID, itemID := groupArg(os.Args[2]), groupArg(os.Args[3]), os.Args[4]

	if err := pipeline.Relocate(oldGroupID, newGroupID, itemID); err != nil {
		log.Fatalf("Relocate failed: %v", err)
	}
	log.Printf("Moved item %s from group %q to %q", itemID, oldGroupID, newGroupID)
}

func runDelete(pipeline *imageprocessor.Pipeline) {
	if len(os.Args) < 4 {
		log.Fatalf("Usage: pixeldenctl delete <group> <item>")
	}
	groupID, itemID := groupArg(os.Args[2]), os.Args[3]

	if err := pipeline.DeleteAll(groupID, itemID); err != nil {
		log.Fatalf("Delete failed: %v", err)
	}
	imageprocessor.ClearImageStatus(itemID)
	log.Printf("Deleted item %s", itemID)
}

func runResolve(pipeline *imageprocessor.Pipeline) {
	if len(os.Args) < 5 {
		log.Fatalf("Usage: pixeldenctl resolve <group> <item> <size>")
	}
	groupID, itemID, sizeName := groupArg(os.Args[2]), os.Args[3], os.Args[4]

	path := pipeline.ResolvePath(groupID, itemID, sizeName)
	if path == "" {
		log.Fatalf("No file stored for item %s", itemID)
	}
	fmt.Println(path)
}

func runDims() {
	if len(os.Args) < 3 {
		log.Fatalf("Usage: pixeldenctl dims <file>")
	}

	dims, err := imageprocessor.ReadOrientedDimensions(os.Args[2])
	if err != nil {
		log.Fatalf("Failed to read dimensions: %v", err)
	}
	fmt.Printf("%dx%d\n", dims.Width, dims.Height)
}

func runMeta() {
	if len(os.Args) < 3 {
		log.Fatalf("Usage: pixeldenctl meta <file>")
	}

	meta, err := imageprocessor.ExtractMetadata(os.Args[2])
	if err != nil {
		log.Fatalf("Failed to read metadata: %v", err)
	}
	if meta == nil {
		fmt.Println("No EXIF metadata present")
		return
	}

	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render metadata: %v", err)
	}
	fmt.Println(string(out))
}

func runStats(cfg imageprocessor.Config) {
	ctx := context.Background()
	queue := jobqueue.NewQueue(1, nil)

	pending, err := queue.GetQueueSize(ctx)
	if err != nil {
		log.Fatalf("Failed to read queue size: %v", err)
	}
	processing, err := queue.GetProcessingSize(ctx)
	if err != nil {
		log.Fatalf("Failed to read processing size: %v", err)
	}
	fmt.Printf("Queue: %d pending, %d processing\n", pending, processing)

	stats, err := queue.GetJobStats(ctx)
	if err != nil {
		log.Fatalf("Failed to read job stats: %v", err)
	}
	for _, status := range []jobqueue.JobStatus{
		jobqueue.JobStatusPending,
		jobqueue.JobStatusProcessing,
		jobqueue.JobStatusCompleted,
		jobqueue.JobStatusFailed,
		jobqueue.JobStatusRetrying,
	} {
		if count, ok := stats[status]; ok {
			fmt.Printf("  %s: %d\n", status, count)
		}
	}

	snapshot, err := counter.Snapshot()
	if err != nil {
		log.Fatalf("Failed to read counters: %v", err)
	}
	fields := make([]string, 0, len(snapshot))
	for field := range snapshot {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	fmt.Println("Counters:")
	for _, field := range fields {
		fmt.Printf("  %s: %d\n", field, snapshot[field])
	}

	health := storage.CheckRoot(cfg.StorageRoot)
	fmt.Printf("Storage root %s: healthy=%t writable=%t\n", health.Root, health.Healthy, health.Writable)
	if health.Message != "" {
		fmt.Printf("  %s\n", health.Message)
	}
}

// groupArg maps the CLI placeholder "-" to the uncategorized group
func groupArg(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func printUsage() {
	fmt.Println("Usage: pixeldenctl [command]")
	fmt.Println("Available commands:")
	fmt.Println("  ingest <file> [-group G] [-item I]  - Stage and ingest an image (group - = uncategorized)")
	fmt.Println("  relocate <old-group> <new-group> <item> - Move an item between groups")
	fmt.Println("  delete <group> <item>               - Delete an item and all its variants")
	fmt.Println("  resolve <group> <item> <size>       - Print the servable path for a size")
	fmt.Println("  dims <file>                         - Print orientation-corrected dimensions")
	fmt.Println("  meta <file>                         - Print EXIF metadata of an image file")
	fmt.Println("  stats                               - Print queue, counter and storage health stats")
}
