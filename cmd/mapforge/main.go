package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/springforge/mapforge/internal/archive"
	"github.com/springforge/mapforge/internal/bundle"
	"github.com/springforge/mapforge/internal/config"
	"github.com/springforge/mapforge/internal/heightmap"
	"github.com/springforge/mapforge/internal/library"
	"github.com/springforge/mapforge/internal/logger"
	"github.com/springforge/mapforge/internal/mapgen"
)

func main() {
	args := os.Args[1:]
	cmd := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "generate":
		runGenerate(args)
	case "list":
		runList(args)
	case "info":
		runInfo(args)
	case "install":
		runInstall(args)
	case "verify":
		runVerify(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: mapforge [command] [flags]

Commands:
  generate   Generate a map bundle and archive (default)
  list       List maps in the library catalog
  info       Show details for one cataloged map
  install    Copy a map archive into the engine maps directory
  verify     Check a map archive against its checksum sidecar

Run "mapforge <command> -h" for command flags.

Archetypes: %s
`, strings.Join(heightmap.ArchetypeNames(), ", "))
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configFile := fs.String("config", "data/mapforge.yaml", "Path to config YAML file")
	name := fs.String("name", "", "Map display name (required)")
	archetypeName := fs.String("archetype", "hills", "Terrain archetype")
	seed := fs.Int64("seed", 0, "Generation seed (default: random based on current time)")
	size := fs.Int("size", 512, "Grid edge length in cells (square maps)")
	width := fs.Int("width", 0, "Grid width in cells (overrides -size)")
	height := fs.Int("height", 0, "Grid height in cells (overrides -size)")
	spotCount := fs.Int("spots", 16, "Number of resource spots to place")
	separation := fs.Float64("separation", 400, "Minimum spot separation in world units")
	outDir := fs.String("out", "", "Output directory (default: config output dir)")
	noPack := fs.Bool("no-pack", false, "Skip packing the bundle into an .sd7 archive")
	install := fs.Bool("install", false, "Install the archive into the engine maps directory")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Initialize(cfg.Logging)

	archetype, err := heightmap.ParseArchetype(*archetypeName)
	if err != nil {
		log.Fatalf("Invalid archetype: %v", err)
	}

	mapSeed := *seed
	if mapSeed == 0 {
		mapSeed = time.Now().UnixNano()
		logger.Info("Map seed selected", "seed", mapSeed, "random", true)
	} else {
		logger.Info("Map seed selected", "seed", mapSeed, "random", false)
	}

	params := heightmap.DefaultParams(archetype, mapSeed)
	params.Width = *size
	params.Height = *size
	if *width > 0 {
		params.Width = *width
	}
	if *height > 0 {
		params.Height = *height
	}
	params.SpotCount = *spotCount
	params.SpotMinSeparation = *separation
	params.MinElevation = cfg.Map.MinHeight
	params.MaxElevation = cfg.Map.MaxHeight

	output := *outDir
	if output == "" {
		output = cfg.Output.Dir
	}

	// Ctrl+C cancels the pipeline; a cancelled run leaves no bundle behind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := mapgen.Run(ctx, mapgen.Request{
		Params:    params,
		Meta:      cfg.Metadata(*name),
		OutputDir: output,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Generation cancelled")
			os.Exit(1)
		}
		log.Fatalf("Generation failed: %v", err)
	}
	if res.Underfilled > 0 {
		fmt.Printf("Warning: placed %d of %d resource spots\n",
			len(res.Spots), params.SpotCount)
	}
	fmt.Printf("Bundle written to %s\n", res.BundleDir)

	sd7Path := ""
	checksum := ""
	if !*noPack {
		sd7Path = filepath.Join(output, res.Bundle.Meta.Shortname+".sd7")
		if err := archive.Pack(res.BundleDir, sd7Path); err != nil {
			log.Fatalf("Failed to pack archive: %v", err)
		}
		checksum, err = archive.ReadChecksum(sd7Path)
		if err != nil {
			log.Fatalf("Failed to read archive checksum: %v", err)
		}
		fmt.Printf("Archive written to %s\n", sd7Path)
	}

	lib, err := library.Open(cfg.Output.LibraryPath)
	if err != nil {
		log.Fatalf("Failed to open library: %v", err)
	}
	defer lib.Close()

	if _, err := lib.Add(library.Entry{
		Name:      *name,
		Archetype: archetype.String(),
		Seed:      mapSeed,
		Width:     params.Width,
		Height:    params.Height,
		SpotCount: len(res.Spots),
		BundleDir: res.BundleDir,
		SD7Path:   sd7Path,
		Checksum:  checksum,
	}); err != nil {
		log.Fatalf("Failed to catalog map: %v", err)
	}
	logger.Info("Map cataloged", "name", *name, "library", cfg.Output.LibraryPath)

	if *install {
		if *noPack {
			log.Fatalf("Cannot install: -no-pack was set")
		}
		if cfg.Engine.MapsDir == "" {
			log.Fatalf("Cannot install: engine maps_dir is not configured")
		}
		dest, err := archive.Install(sd7Path, cfg.Engine.MapsDir)
		if err != nil {
			log.Fatalf("Failed to install archive: %v", err)
		}
		fmt.Printf("Installed to %s\n", dest)
	}
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configFile := fs.String("config", "data/mapforge.yaml", "Path to config YAML file")
	installed := fs.Bool("installed", false, "List archives in the engine maps directory instead")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *installed {
		names, err := archive.ListInstalled(cfg.Engine.MapsDir)
		if err != nil {
			log.Fatalf("Failed to list installed maps: %v", err)
		}
		if len(names) == 0 {
			fmt.Println("No maps installed.")
			return
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	lib, err := library.Open(cfg.Output.LibraryPath)
	if err != nil {
		log.Fatalf("Failed to open library: %v", err)
	}
	defer lib.Close()

	entries, err := lib.List()
	if err != nil {
		log.Fatalf("Failed to list library: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("Library is empty.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tARCHETYPE\tSIZE\tSPOTS\tSEED\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%d\t%s\n",
			e.Name, e.Archetype, e.Width, e.Height, e.SpotCount, e.Seed,
			e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configFile := fs.String("config", "data/mapforge.yaml", "Path to config YAML file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: mapforge info <map name>")
		os.Exit(2)
	}
	name := fs.Arg(0)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lib, err := library.Open(cfg.Output.LibraryPath)
	if err != nil {
		log.Fatalf("Failed to open library: %v", err)
	}
	defer lib.Close()

	e, err := lib.Get(name)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			log.Fatalf("Map %q is not in the library", name)
		}
		log.Fatalf("Failed to look up map: %v", err)
	}

	fmt.Printf("Name:       %s\n", e.Name)
	fmt.Printf("Archetype:  %s\n", e.Archetype)
	fmt.Printf("Seed:       %d\n", e.Seed)
	fmt.Printf("Grid:       %dx%d\n", e.Width, e.Height)
	fmt.Printf("Spots:      %d\n", e.SpotCount)
	fmt.Printf("Bundle:     %s\n", e.BundleDir)
	if e.SD7Path != "" {
		fmt.Printf("Archive:    %s\n", e.SD7Path)
		fmt.Printf("Checksum:   %s\n", e.Checksum)
	}
	fmt.Printf("Created:    %s\n", e.CreatedAt.Local().Format(time.RFC1123))

	descriptor := filepath.Join(e.BundleDir, bundle.DescriptorFile)
	if src, readErr := os.ReadFile(descriptor); readErr == nil {
		if info, parseErr := bundle.ParseDescriptor(string(src)); parseErr == nil {
			fmt.Printf("Descriptor: %s by %s, %d resource spots\n",
				info.Name, info.Author, len(info.MetalSpots))
		}
	}
}

func runInstall(args []string) {
	fs := flag.NewFlagSet("install", flag.ExitOnError)
	configFile := fs.String("config", "data/mapforge.yaml", "Path to config YAML file")
	mapsDir := fs.String("maps-dir", "", "Engine maps directory (default: config engine maps_dir)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: mapforge install <archive.sd7>")
		os.Exit(2)
	}
	sd7Path := fs.Arg(0)

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dir := *mapsDir
	if dir == "" {
		dir = cfg.Engine.MapsDir
	}
	if dir == "" {
		log.Fatalf("No maps directory: pass -maps-dir or set engine maps_dir in config")
	}

	ok, err := archive.Verify(sd7Path)
	if err != nil {
		log.Fatalf("Failed to verify archive: %v", err)
	}
	if !ok {
		log.Fatalf("Archive %s does not match its checksum, refusing to install", sd7Path)
	}

	dest, err := archive.Install(sd7Path, dir)
	if err != nil {
		log.Fatalf("Failed to install archive: %v", err)
	}
	fmt.Printf("Installed to %s\n", dest)
}

func runVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: mapforge verify <archive.sd7>")
		os.Exit(2)
	}
	sd7Path := fs.Arg(0)

	ok, err := archive.Verify(sd7Path)
	if err != nil {
		log.Fatalf("Failed to verify archive: %v", err)
	}
	if !ok {
		fmt.Printf("%s: checksum MISMATCH\n", sd7Path)
		os.Exit(1)
	}
	fmt.Printf("%s: checksum OK\n", sd7Path)
}
