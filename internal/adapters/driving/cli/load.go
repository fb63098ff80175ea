package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docloader/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docloader/internal/adapters/driven/storage"
	"github.com/custodia-labs/docloader/internal/adapters/driving/tui"
	"github.com/custodia-labs/docloader/internal/connectors/filesystem"
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
	"github.com/custodia-labs/docloader/internal/core/services"
	"github.com/custodia-labs/docloader/internal/processors"
	"github.com/custodia-labs/docloader/internal/properties"
	"github.com/custodia-labs/docloader/internal/tokenreplacer"
)

// envPropertiesPrefix selects environment variables used as token properties.
const envPropertiesPrefix = "DOCLOADER_PROP_"

// progressInterval is how often load progress is polled.
var progressInterval = 500 * time.Millisecond

// stdoutIsTerminal reports whether the progress view can be shown.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runProgressView runs the interactive progress view; replaced in tests.
var runProgressView = func(ctx context.Context, loader driving.FileLoader, paths []string) ([]*domain.Document, error) {
	return tui.Run(ctx, loader, paths, tea.WithOutput(os.Stdout))
}

// loadOptions holds the flags shared by load, watch and modules load.
type loadOptions struct {
	batchSize          int
	noWait             bool
	noLogURIs          bool
	permissions        string
	collections        []string
	binaryExtensions   []string
	exclude            []string
	includeHidden      bool
	propertyPrefix     string
	propertiesFiles    []string
	ignoreUnresolvable bool
	writerType         string
	writerPath         string
	workers            int
	rate               float64
	dryRun             bool
	progress           bool
}

var loadOpts loadOptions

var loadCmd = &cobra.Command{
	Use:   "load <path>...",
	Short: "Load files into the document store",
	Long: `Walks the given files and directories and loads every file as a document.
A directory's files get URIs relative to the directory; a file gets "/" plus
its name. Hidden files are skipped unless --include-hidden is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	addLoadFlags(loadCmd)
	loadCmd.Flags().BoolVar(&loadOpts.progress, "progress", false,
		"show an interactive progress view when attached to a terminal")
	rootCmd.AddCommand(loadCmd)
}

func addLoadFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&loadOpts.batchSize, "batch-size", "b", 0, "documents per batch (0 writes a single batch)")
	f.BoolVar(&loadOpts.noWait, "no-wait", false, "do not wait for the writer to complete")
	f.BoolVar(&loadOpts.noLogURIs, "no-log-uris", false, "do not log each URI before its batch is written")
	f.StringVarP(&loadOpts.permissions, "permissions", "p", "", "role,capability pairs, e.g. reader,read,writer,update")
	f.StringSliceVar(&loadOpts.collections, "collections", nil, "collections applied to every document")
	f.StringSliceVar(&loadOpts.binaryExtensions, "binary-ext", nil, "additional extensions loaded as binary")
	f.StringSliceVarP(&loadOpts.exclude, "exclude", "x", nil, "glob patterns of paths to skip")
	f.BoolVar(&loadOpts.includeHidden, "include-hidden", false, "load hidden files and directories")
	f.StringVar(&loadOpts.propertyPrefix, "property-prefix", "", "prefix of property tokens, e.g. "+tokenreplacer.MLPrefix)
	f.StringSliceVar(&loadOpts.propertiesFiles, "properties", nil, "properties files (.toml, .yaml, .env, .properties)")
	f.BoolVar(&loadOpts.ignoreUnresolvable, "ignore-unresolvable", false, "leave unresolved ${...} placeholders")
	f.StringVarP(&loadOpts.writerType, "writer", "w", "", "writer type: "+strings.Join(storage.Types(), ", "))
	f.StringVar(&loadOpts.writerPath, "writer-path", "", "database file or index directory")
	f.IntVar(&loadOpts.workers, "workers", 0, "write batches asynchronously with this many workers")
	f.Float64Var(&loadOpts.rate, "rate", 0, "maximum batches per second in asynchronous mode")
	f.BoolVar(&loadOpts.dryRun, "dry-run", false, "write to memory and list the loaded URIs")
}

// resolveSettings reads the config file and applies the flags that were set.
func resolveSettings(cmd *cobra.Command) (domain.LoaderSettings, *file.ConfigStore, error) {
	store, err := openConfig()
	if err != nil {
		return domain.LoaderSettings{}, nil, err
	}

	settings, err := file.DecodeLoaderSettings(store.Section(file.LoaderSection))
	if err != nil {
		return settings, nil, err
	}

	applyLoadFlags(cmd, &settings)

	if err := file.ValidateLoaderSettings(settings); err != nil {
		return settings, nil, err
	}
	return settings, store, nil
}

func applyLoadFlags(cmd *cobra.Command, s *domain.LoaderSettings) {
	f := cmd.Flags()
	if f.Changed("batch-size") {
		s.BatchSize = loadOpts.batchSize
	}
	if f.Changed("no-wait") {
		s.WaitForCompletion = !loadOpts.noWait
	}
	if f.Changed("no-log-uris") {
		s.LogFileURIs = !loadOpts.noLogURIs
	}
	if f.Changed("permissions") {
		s.Permissions = loadOpts.permissions
	}
	if f.Changed("collections") {
		s.Collections = loadOpts.collections
	}
	if f.Changed("binary-ext") {
		s.AdditionalBinaryExtensions = loadOpts.binaryExtensions
	}
	if f.Changed("exclude") {
		s.Exclude = append(s.Exclude, loadOpts.exclude...)
	}
	if f.Changed("include-hidden") {
		s.IncludeHidden = loadOpts.includeHidden
	}
	if f.Changed("property-prefix") {
		s.PropertyPrefix = loadOpts.propertyPrefix
	}
	if f.Changed("properties") {
		s.PropertiesFiles = loadOpts.propertiesFiles
	}
	if f.Changed("ignore-unresolvable") {
		s.IgnoreUnresolvable = loadOpts.ignoreUnresolvable
	}
	if f.Changed("writer") {
		s.Writer.Type = loadOpts.writerType
	}
	if f.Changed("writer-path") {
		s.Writer.Path = loadOpts.writerPath
	}
	if f.Changed("workers") {
		s.Writer.Workers = loadOpts.workers
	}
	if f.Changed("rate") {
		s.Writer.Rate = loadOpts.rate
	}
	if loadOpts.dryRun {
		s.Writer = domain.WriterSettings{Type: domain.WriterTypeMemory}
	}
}

// loadRuntime is a wired loader and the resources it owns.
type loadRuntime struct {
	loader   *services.FileLoader
	writer   driven.BatchWriter
	replacer *tokenreplacer.DefaultTokenReplacer
}

// Close releases the writer.
func (r *loadRuntime) Close() error {
	return storage.Close(r.writer)
}

// buildLoader wires a FileLoader from settings.
func buildLoader(settings domain.LoaderSettings, store *file.ConfigStore) (*loadRuntime, error) {
	sources, err := propertiesSources(settings, store)
	if err != nil {
		return nil, err
	}
	replacer := tokenreplacer.New(
		tokenreplacer.WithPrefix(settings.PropertyPrefix),
		tokenreplacer.WithIgnoreUnresolvable(settings.IgnoreUnresolvable),
		tokenreplacer.WithSources(sources...),
	)

	custom, err := processors.NewDefaultRegistry().BuildAll(settings.Processors)
	if err != nil {
		return nil, err
	}

	opts := []services.LoaderOption{
		services.WithBatchSize(settings.BatchSize),
		services.WithWaitForCompletion(settings.WaitForCompletion),
		services.WithLogFileURIs(settings.LogFileURIs),
		services.WithPermissions(settings.Permissions),
		services.WithCollections(settings.Collections...),
		services.WithTokenReplacer(replacer),
		services.WithAdditionalBinaryExtensions(settings.AdditionalBinaryExtensions...),
		services.WithIncludeHidden(settings.IncludeHidden),
		services.WithProcessors(custom...),
	}
	if len(settings.Exclude) > 0 {
		glob, err := filesystem.NewGlobFilter(settings.Exclude...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithFileFilters(glob))
	}

	w, err := newWriter(settings.Writer)
	if err != nil {
		return nil, err
	}

	loader, err := services.NewFileLoader(w, opts...)
	if err != nil {
		_ = storage.Close(w)
		return nil, err
	}

	return &loadRuntime{loader: loader, writer: w, replacer: replacer}, nil
}

// propertiesSources lists the token property sources in precedence order:
// the config file's [properties] table, properties files in order, then
// DOCLOADER_PROP_ environment variables.
func propertiesSources(settings domain.LoaderSettings, store *file.ConfigStore) ([]driven.PropertiesSource, error) {
	sources := []driven.PropertiesSource{store.Properties(file.PropertiesSection)}

	for _, p := range settings.PropertiesFiles {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: properties file: %w", domain.ErrConfiguration, err)
		}
		if strings.EqualFold(filepath.Ext(p), ".toml") {
			tomlStore, err := file.NewConfigStore(p)
			if err != nil {
				return nil, fmt.Errorf("%w: properties file %s: %w", domain.ErrConfiguration, p, err)
			}
			sources = append(sources, tomlStore.Properties(""))
			continue
		}
		src, err := properties.FileSource(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return append(sources, properties.NewEnvSource(envPropertiesPrefix)), nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	settings, store, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	rt, err := buildLoader(settings, store)
	if err != nil {
		return err
	}
	defer rt.Close()

	var docs []*domain.Document
	if loadOpts.progress && stdoutIsTerminal() {
		docs, err = runProgressView(cmd.Context(), rt.loader, args)
	} else {
		cmd.Printf("Loading %s...\n", strings.Join(args, ", "))
		docs, err = loadWithProgress(cmd.Context(), cmd, rt.loader, args)
	}
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if loadOpts.dryRun {
		for _, uri := range domain.URIs(docs) {
			cmd.Println(uri)
		}
	}
	cmd.Printf("Loaded %d documents.\n", len(docs))
	return nil
}

// loadWithProgress runs a load while displaying progress updates.
func loadWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	loader driving.FileLoader,
	paths []string,
) ([]*domain.Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	type result struct {
		docs []*domain.Document
		err  error
	}

	// Start load in goroutine
	resCh := make(chan result, 1)
	go func() {
		docs, err := loader.LoadFiles(ctx, paths...)
		resCh <- result{docs: docs, err: err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-resCh:
			status := loader.Status()
			if status.BatchesWritten > 0 {
				cmd.Printf("\rWrote %d documents in %d batches\n",
					status.DocumentsWritten, status.BatchesWritten)
			}
			return res.docs, res.err
		case <-ticker.C:
			status := loader.Status()
			if status.DocumentsWritten > lastCount {
				cmd.Printf("\rWriting... %d of %d documents", status.DocumentsWritten, status.DocumentsRead)
				lastCount = status.DocumentsWritten
			}
		}
	}
}
