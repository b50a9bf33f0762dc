// ABOUTME: Document diff service comparing two document exports
// ABOUTME: Parses, compares, locates and folds differences into a DocumentDiff

package docdiff

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nainya/docdiff/internal/logger"
	"github.com/nainya/docdiff/internal/metrics"
	"github.com/nainya/docdiff/pkg/fielddiff"
	"github.com/nainya/docdiff/pkg/model"
	"github.com/nainya/docdiff/pkg/xmldiff"
	"github.com/nainya/docdiff/pkg/xmltree"
)

// Config configures a Service
type Config struct {
	IgnoreWhitespace bool
	IgnoreComments   bool
	// CacheSize is the number of results kept; 0 disables the cache.
	CacheSize int
	// MaxConcurrency bounds DiffBatch; 0 or less picks a CPU based default.
	MaxConcurrency int64
}

// DefaultConfig returns the configuration used by the CLI and the server
func DefaultConfig() Config {
	return Config{
		IgnoreWhitespace: true,
		IgnoreComments:   true,
		CacheSize:        128,
	}
}

// Service computes document diffs. It is safe for concurrent use: each
// comparison owns its trees and its DocumentDiff.
type Service struct {
	cfg      Config
	comparer *xmldiff.Comparer
	cache    *resultCache
	log      *logger.Logger
	metrics  *metrics.Metrics
	seq      atomic.Uint64
}

// NewService creates a service. log and m may be nil.
func NewService(cfg Config, log *logger.Logger, m *metrics.Metrics) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}

	cache, err := newResultCache(cfg.CacheSize, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	return &Service{
		cfg:      cfg,
		comparer: NewComparer(),
		cache:    cache,
		log:      log,
		metrics:  m,
	}, nil
}

// NewComparer returns the XML comparer document exports are diffed with:
// elements match on name and attributes, and structural noise is dropped
// along with schemas present on one side only and indentation changes.
func NewComparer() *xmldiff.Comparer {
	return &xmldiff.Comparer{
		Qualifier: xmldiff.NameAndAttributesQualifier{},
		Filter: xmldiff.AnyFilter{
			xmldiff.StructuralFilter(),
			xmldiff.UnbalancedElementFilter(fielddiff.SchemaElement),
			xmldiff.WhitespaceTextFilter(),
		},
	}
}

// Comparer returns the comparer in use
func (s *Service) Comparer() *xmldiff.Comparer {
	return s.comparer
}

// Config returns the service configuration
func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) parseOptions() xmltree.ParseOptions {
	return xmltree.ParseOptions{
		IgnoreWhitespace: s.cfg.IgnoreWhitespace,
		IgnoreComments:   s.cfg.IgnoreComments,
	}
}

// Diff compares two XML document exports. Results are cached by content;
// a cached DocumentDiff is shared and must not be modified.
func (s *Service) Diff(ctx context.Context, left, right []byte) (*model.DocumentDiff, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cacheKey(left, right)
	if diff, ok := s.cache.get(key); ok {
		return diff, nil
	}

	opts := s.parseOptions()
	control, err := xmltree.ParseBytes(left, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: left document: %w", ErrInvalidInput, err)
	}
	test, err := xmltree.ParseBytes(right, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: right document: %w", ErrInvalidInput, err)
	}

	diff, err := s.DiffDocuments(ctx, control, test)
	if err != nil {
		return nil, err
	}

	s.cache.add(key, diff)
	return diff, nil
}

// DiffStrings compares two XML document exports given as strings
func (s *Service) DiffStrings(ctx context.Context, left, right string) (*model.DocumentDiff, error) {
	return s.Diff(ctx, []byte(left), []byte(right))
}

// DiffDocuments compares two parsed document exports. The first
// inconsistency aborts the comparison; no partial diff is returned.
func (s *Service) DiffDocuments(ctx context.Context, control, test *xmltree.Document) (*model.DocumentDiff, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	log := s.log.DiffLogger(fmt.Sprintf("cmp-%d", s.seq.Add(1)))

	diff, err := s.compare(log, control, test)

	duration := time.Since(start)
	if err != nil {
		log.LogComparison(duration, 0, 0, err)
		s.recordComparison("error", duration)
		return nil, err
	}

	fields := 0
	for _, schema := range diff.Schemas {
		fields += schema.FieldCount()
	}
	log.LogComparison(duration, diff.SchemaCount(), fields, nil)
	s.recordComparison("success", duration)
	return diff, nil
}

func (s *Service) compare(log *logger.Logger, control, test *xmltree.Document) (*model.DocumentDiff, error) {
	diff := model.NewDocumentDiff()
	n := 0

	for _, d := range s.comparer.Compare(control, test) {
		if s.metrics != nil {
			s.metrics.RecordRawDifference(d.Kind.String())
		}

		fd, ok := fielddiff.Resolve(d)
		if !ok {
			log.LogNonFieldDifference(d.Kind.String(), d.Description())
			if s.metrics != nil {
				s.metrics.RecordNonFieldDifference()
			}
			continue
		}

		n++
		log.LogFieldDifference(n, fd.Schema, fd.Field, fd.Hierarchy.String(), fd.Kind.String())
		if s.metrics != nil {
			s.metrics.RecordFieldDifference()
		}

		if err := fielddiff.Apply(diff, fd); err != nil {
			return nil, fmt.Errorf("difference %d (%s): %w", n, d.Description(), err)
		}
	}
	return diff, nil
}

func (s *Service) recordComparison(status string, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordComparison(status, duration)
	}
}
