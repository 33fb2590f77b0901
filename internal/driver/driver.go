// Package driver orchestrates the translation pipeline (C9): load the
// image, recover control flow, emit one Go function per discovered guest
// function across a bounded worker pool, and write the resulting sources
// plus a function-mapping manifest to the configured output directory.
package driver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"ppcrecomp/internal/config"
	"ppcrecomp/internal/disasm"
	"ppcrecomp/internal/emitter"
	"ppcrecomp/internal/flow"
	"ppcrecomp/internal/image"
	"ppcrecomp/internal/logging"
	"ppcrecomp/internal/ppcerr"
)

// Driver holds everything a translation run needs beyond the config file
// itself: the instruction decoder (an external collaborator, stood in here
// by a concrete disasm.Decoder) and the worker-pool size.
type Driver struct {
	Decoder disasm.Decoder
	Workers int
	Log     *slog.Logger
}

// New returns a Driver with workers defaulted to runtime.GOMAXPROCS(0) when
// workers <= 0, matching the -workers CLI flag's documented default.
func New(decoder disasm.Decoder, workers int, log *slog.Logger) *Driver {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = logging.Default()
	}
	return &Driver{Decoder: decoder, Workers: workers, Log: log}
}

// emitResult is one function's emission outcome, collected from a worker
// goroutine back to the sequential writer below.
type emitResult struct {
	fn  flow.Function
	src string
	err error
}

// Run executes the full pipeline for cfg: load cfg.In, recover flow from
// its entry points, emit every discovered function in parallel, and write
// the result under cfg.Out.
func (d *Driver) Run(cfg config.Config) error {
	img, err := image.Load(cfg.In)
	if err != nil {
		return err
	}
	env := img.Environment()
	d.Log.Info("loaded image", "in", cfg.In, "entry", fmt.Sprintf("0x%08X", img.EntryVA), "codeSize", env.CodeSize)

	report, err := flow.Recover(img.Code, env, d.Decoder, img.EntryPoints())
	if err != nil {
		return err
	}
	d.Log.Info("recovered control flow", "functions", len(report.Functions))

	profile := cfg.Profile()
	sources, err := d.emitAll(report, profile)
	if err != nil {
		return err
	}

	return writeOutput(cfg.Out, sources)
}

// emitAll renders every function in report concurrently across d.Workers
// goroutines, matching SPEC_FULL.md §5's bounded-worker-pool model. Results
// are collected into an address-ordered slice by the single mutex-guarded
// builder below — the same single-lock append-only contract the function
// map itself uses.
func (d *Driver) emitAll(report *flow.Report, profile emitter.ElisionProfile) ([]emitResult, error) {
	jobs := make(chan flow.Function)
	results := make([]emitResult, 0, len(report.Functions))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < d.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := emitter.New(profile)
			for fn := range jobs {
				src, err := e.EmitFunction(funcName(fn.Entry), fn.Entry, fn.Instrs)
				mu.Lock()
				results = append(results, emitResult{fn: fn, src: src, err: err})
				mu.Unlock()
			}
		}()
	}

	for _, fn := range report.Functions {
		jobs <- fn
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].fn.Entry < results[j].fn.Entry })

	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
	}
	return results, nil
}

func funcName(addr uint32) string { return fmt.Sprintf("Func_%08X", addr) }

// importCandidates lists every package a translated function body might
// reference, paired with the substring that proves the reference. ppc is
// always imported: every function signature carries a *ppc.Context.
var importCandidates = []struct{ pkg, needle string }{
	{"ppcrecomp/internal/cr", "cr."},
	{"ppcrecomp/internal/trampoline", "trampoline."},
	{"ppcrecomp/internal/ppcmem", "ppcmem."},
	{"ppcrecomp/internal/vector", "vector."},
	{"ppcrecomp/internal/fpscr", "fpscr."},
	{"encoding/binary", "binary."},
	{"math", "math."},
}

// renderImports computes the import block a function's rendered body
// actually needs, instead of a fixed preamble every file pays for
// regardless of use: an unreferenced import is a compile error in Go, and
// the mnemonic set any one function exercises varies widely now that the
// emitter covers integer, float, and vector opcodes.
func renderImports(body string) string {
	pkgs := []string{"ppcrecomp/internal/ppc"}
	for _, c := range importCandidates {
		if strings.Contains(body, c.needle) {
			pkgs = append(pkgs, c.pkg)
		}
	}
	sort.Strings(pkgs)

	var b strings.Builder
	b.WriteString("import (\n")
	for _, p := range pkgs {
		fmt.Fprintf(&b, "\t%q\n", p)
	}
	b.WriteString(")\n\n")
	return b.String()
}

// writeOutput writes one Go source file per function, a compilable
// PPCFuncMappings.go bootstrap wiring trampoline.SetActive before any
// emitted function can run, and a human-readable manifest, under outDir.
func writeOutput(outDir string, results []emitResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return ppcerr.Wrap(ppcerr.ConfigError, 0, "creating output directory "+outDir, err)
	}

	var manifest []byte
	manifest = append(manifest, "// recovered guest functions\n"...)

	for _, r := range results {
		path := filepath.Join(outDir, fmt.Sprintf("%s.go", funcName(r.fn.Entry)))
		contents := "package recompiled\n\n" + renderImports(r.src) + r.src
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			return ppcerr.Wrap(ppcerr.ConfigError, r.fn.Entry, "writing "+path, err)
		}

		manifest = append(manifest, []byte(fmt.Sprintf("0x%08X %s", r.fn.Entry, funcName(r.fn.Entry)))...)
		for _, alias := range r.fn.Aliases {
			manifest = append(manifest, []byte(fmt.Sprintf(" alias=0x%08X", alias))...)
		}
		manifest = append(manifest, '\n')
	}

	if err := os.WriteFile(filepath.Join(outDir, "PPCFuncMappings.txt"), manifest, 0o644); err != nil {
		return err
	}

	return writeFuncMappings(outDir, results)
}

// writeFuncMappings generates PPCFuncMappings.go: a compilable table of
// every recovered entry (and alias) paired with its translated Go function,
// plus InstallFuncMap, which builds the trampoline.Map from it and installs
// it via trampoline.SetActive. Without this file, trampoline.Call and
// CallIndirect resolve against a permanently-nil active map and the very
// first guest call in the translated program would crash; this is the
// bootstrap the function-mapping component requires, not just the
// diagnostic .txt listing.
func writeFuncMappings(outDir string, results []emitResult) error {
	var b strings.Builder
	b.WriteString("package recompiled\n\n")
	b.WriteString("import (\n\t\"ppcrecomp/internal/ppc\"\n\t\"ppcrecomp/internal/trampoline\"\n)\n\n")

	b.WriteString("// PPCFuncMappings is every recovered guest entry point (including\n")
	b.WriteString("// tail-call aliases) paired with its translated function.\n")
	b.WriteString("var PPCFuncMappings = []struct {\n\tAddr uint32\n\tFunc ppc.Func\n}{\n")
	for _, r := range results {
		fmt.Fprintf(&b, "\t{Addr: 0x%08X, Func: %s},\n", r.fn.Entry, funcName(r.fn.Entry))
		for _, alias := range r.fn.Aliases {
			fmt.Fprintf(&b, "\t{Addr: 0x%08X, Func: %s},\n", alias, funcName(r.fn.Entry))
		}
	}
	b.WriteString("}\n\n")

	b.WriteString("// InstallFuncMap allocates a trampoline.Map sized to env, populates it from\n")
	b.WriteString("// PPCFuncMappings, and installs it via trampoline.SetActive. Call this once\n")
	b.WriteString("// at process start, before any emitted function runs: trampoline.Call and\n")
	b.WriteString("// CallIndirect resolve against the package-level active map this installs,\n")
	b.WriteString("// and panic against a nil receiver until it has been called.\n")
	b.WriteString("func InstallFuncMap(env ppc.Environment) error {\n")
	b.WriteString("\tm := trampoline.NewMap(env)\n")
	b.WriteString("\tfor _, entry := range PPCFuncMappings {\n")
	b.WriteString("\t\tif err := m.Set(entry.Addr, entry.Func); err != nil {\n")
	b.WriteString("\t\t\treturn err\n")
	b.WriteString("\t\t}\n")
	b.WriteString("\t}\n")
	b.WriteString("\ttrampoline.SetActive(m)\n")
	b.WriteString("\treturn nil\n")
	b.WriteString("}\n")

	return os.WriteFile(filepath.Join(outDir, "PPCFuncMappings.go"), []byte(b.String()), 0o644)
}
