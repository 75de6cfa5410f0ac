package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/walteh/quickxfer/pkg/category"
)

// 📊 Source tells where a category's data came from
type Source int

const (
	SourceMissing Source = iota
	SourceFile
	SourceFolder
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceFolder:
		return "folder"
	default:
		return "missing"
	}
}

// FileReport is the outcome of loading one data file.
type FileReport struct {
	Category category.Category
	Path     string
	Accepted int   // lines that resolved to an identifier
	Rejected int   // lines that failed to parse or resolve
	Added    int   // identifiers new to the category set
	Err      error // set when the file could not be read
}

// CategoryReport sums up one category after a load.
type CategoryReport struct {
	Source Source
	Files  int
	Failed int
	IDs    int
}

// LoadReport describes what LoadAll found and loaded.
type LoadReport struct {
	Dir        string
	Files      []FileReport
	Categories map[category.Category]CategoryReport

	mu sync.Mutex
}

func newLoadReport(dir string) *LoadReport {
	r := &LoadReport{
		Dir:        dir,
		Categories: make(map[category.Category]CategoryReport),
	}
	for _, cat := range category.OfKind(category.KindListed) {
		r.Categories[cat] = CategoryReport{Source: SourceMissing}
	}
	return r
}

func (r *LoadReport) setSource(cat category.Category, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr := r.Categories[cat]
	cr.Source = src
	r.Categories[cat] = cr
}

func (r *LoadReport) addFile(f FileReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files = append(r.Files, f)
	cr := r.Categories[f.Category]
	cr.Files++
	if f.Err != nil {
		cr.Failed++
	}
	r.Categories[f.Category] = cr
}

// finish sorts files by path and records final set sizes.
func (r *LoadReport) finish(c *Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slices.SortFunc(r.Files, func(a, b FileReport) int {
		return strings.Compare(a.Path, b.Path)
	})
	for cat, cr := range r.Categories {
		cr.IDs = c.Len(cat)
		r.Categories[cat] = cr
	}
}

// Rejected returns the total number of dropped lines.
func (r *LoadReport) Rejected() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.Files {
		n += f.Rejected
	}
	return n
}

// Failed returns the files that could not be read.
func (r *LoadReport) Failed() []FileReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []FileReport
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}
