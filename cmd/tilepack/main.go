package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/milk9111/tileforge"
	"github.com/milk9111/tileforge/autotile"
	"github.com/milk9111/tileforge/tilepool"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	imagePath := flag.String("image", "", "Tileset image to import")
	tileW := flag.Int("tile-width", 0, "Tile width in pixels (overrides config)")
	tileH := flag.Int("tile-height", 0, "Tile height in pixels (overrides config)")
	spacing := flag.Int("spacing", -1, "Spacing between tiles in pixels (overrides config)")
	margin := flag.Int("margin", -1, "Margin around the tileset in pixels (overrides config)")
	policy := flag.String("policy", "", "Import policy: all, source_unique or set_unique")
	className := flag.String("class", "", "Autotile class for the preview layer")
	classesDir := flag.String("classes", "", "Directory of class files and scripts")
	atlasOut := flag.String("out", "atlas.png", "Where to write the packed atlas")
	previewOut := flag.String("preview", "", "Optional PNG of an autotiled sample layer")
	printClass := flag.Bool("print-class", false, "Print the selected class as YAML and exit")
	watch := flag.Bool("watch", false, "Rebuild the preview when class files change")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *verbose {
		tileforge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := tileforge.DefaultConfig()
	if *configPath != "" {
		loaded, err := tileforge.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *tileW > 0 {
		cfg.TileWidth = *tileW
	}
	if *tileH > 0 {
		cfg.TileHeight = *tileH
	}
	if *spacing >= 0 {
		cfg.Import.SpacingX, cfg.Import.SpacingY = *spacing, *spacing
	}
	if *margin >= 0 {
		cfg.Import.MarginX, cfg.Import.MarginY = *margin, *margin
	}
	if *policy != "" {
		cfg.Import.Policy = *policy
	}
	if *className != "" {
		cfg.DefaultClass = *className
	}
	if *classesDir != "" {
		cfg.ClassesDir = *classesDir
	}
	if *watch {
		cfg.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	classes, err := cfg.Classes()
	if err != nil {
		log.Printf("Some classes failed to load: %v", err)
	}
	class, err := classes.Class(cfg.DefaultClass)
	if err != nil {
		log.Fatalf("Failed to find class: %v", err)
	}
	if *printClass {
		data, err := autotile.MarshalClass(class)
		if err != nil {
			log.Fatalf("Failed to encode class: %v", err)
		}
		fmt.Print(string(data))
		return
	}

	if *imagePath == "" {
		log.Fatal("-image is required")
	}
	src, err := decodeImage(*imagePath)
	if err != nil {
		log.Fatalf("Failed to read tileset: %v", err)
	}

	opts, err := cfg.ImportOptions()
	if err != nil {
		log.Fatalf("Invalid import options: %v", err)
	}
	pools := tilepool.NewManager(nil)
	pool, err := pools.Create("tileset", cfg.TileWidth, cfg.TileHeight)
	if err != nil {
		log.Fatalf("Failed to create pool: %v", err)
	}
	tiles, err := pool.ImportMerge(src, opts)
	if err != nil {
		log.Fatalf("Failed to import tileset: %v", err)
	}
	cols, rows := opts.Grid(src.Bounds())
	log.Printf("Imported %d of %d tiles (%s)", len(tiles), cols*rows, opts.Policy)

	if err := writePNG(*atlasOut, pool.Atlas().Image()); err != nil {
		log.Fatalf("Failed to write atlas: %v", err)
	}
	log.Printf("Wrote %dx%d slot atlas to %s", pool.Atlas().Cols(), pool.Atlas().Rows(), *atlasOut)

	if *previewOut == "" {
		return
	}
	p := newPreview(pool, tiles, class)
	if err := p.write(*previewOut); err != nil {
		log.Fatalf("Failed to write preview: %v", err)
	}
	if !cfg.Watch {
		return
	}

	watcher, err := autotile.NewWatcher(cfg.ClassesDir)
	if err != nil {
		log.Fatalf("Failed to watch %s: %v", cfg.ClassesDir, err)
	}
	defer watcher.Close()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	log.Printf("Watching %s for class changes", cfg.ClassesDir)
	for {
		select {
		case path, ok := <-watcher.Events:
			if !ok {
				return
			}
			if err := classes.Reload(path); err != nil {
				log.Printf("Reload %s: %v", path, err)
				continue
			}
			c, err := classes.Class(cfg.DefaultClass)
			if err != nil {
				log.Printf("Class %s unavailable: %v", cfg.DefaultClass, err)
				continue
			}
			p.setClass(c)
			if err := p.write(*previewOut); err != nil {
				log.Printf("Failed to write preview: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		case <-interrupt:
			return
		}
	}
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
