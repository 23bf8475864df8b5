package catalog

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmp/farbfeld"
	"github.com/jmp/farbfeld/ffio"
)

const scanWorkers = 10

// Scanner walks a directory tree and indexes every farbfeld file it finds.
type Scanner struct {
	db     *DB
	logger *log.Logger
}

// NewScanner returns a Scanner recording into db. Files that fail to
// decode are reported through logger and skipped rather than aborting the
// scan.
func NewScanner(db *DB, logger *log.Logger) *Scanner {
	return &Scanner{
		db:     db,
		logger: logger,
	}
}

func isFarbfeld(file string) bool {
	return strings.EqualFold(filepath.Ext(ffio.Base(file)), ".ff")
}

var formatErrors = []error{
	farbfeld.ErrInvalidMagic,
	farbfeld.ErrTruncatedHeader,
	farbfeld.ErrDimensionsTooLarge,
	farbfeld.ErrTruncatedPixelData,
	farbfeld.ErrTrailingData,
}

func isFormatError(err error) bool {
	for _, fe := range formatErrors {
		if errors.Is(err, fe) {
			return true
		}
	}
	return false
}

func (s *Scanner) findFiles(ctx context.Context, base string) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !isFarbfeld(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc
}

func (s *Scanner) fileWorker(ctx context.Context, in <-chan string) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			f, err := ffio.Open(file)
			if err != nil {
				errc <- err
				return
			}

			err = s.db.Put(file, f)
			f.Close()

			if err != nil {
				if !isFormatError(err) {
					errc <- err
					return
				}
				s.logger.Printf("Skipping \"%s\": %v\n", file, err)
			}
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path and indexes every *.ff file, including compressed
// variants (.ff.zst, .ff.bz2, .ff.gz).
func (s *Scanner) Scan(ctx context.Context, path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files, errc := s.findFiles(ctx, dir)
	errcList := []<-chan error{errc}

	for i := 0; i < scanWorkers; i++ {
		errcList = append(errcList, s.fileWorker(ctx, files))
	}

	return waitForPipeline(errcList...)
}
