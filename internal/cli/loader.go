package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/roach88/simquery/internal/eval"
	"github.com/roach88/simquery/internal/formula"
	"github.com/roach88/simquery/internal/store"
	"github.com/roach88/simquery/internal/world"
)

// WorldSource names where a command reads its world from: a document file,
// a stored world, or a file that is imported into the database first.
type WorldSource struct {
	File     string // world document (.json, .yaml, .yml, .cue)
	Database string // SQLite database path
	Name     string // stored world name
}

// bindFlags registers -f/--file, --db and --world on cmd.
func (s *WorldSource) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.File, "file", "f", "", "path to a world document")
	cmd.Flags().StringVar(&s.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&s.Name, "world", "", "stored world name (defaults to the file name when importing)")
}

// LoadError represents an error that occurred while loading a world.
type LoadError struct {
	Code     string
	Message  string
	ExitCode int
	Err      error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadedWorld is a world ready to query. Store is nil unless the source
// named a database.
type LoadedWorld struct {
	World *world.World
	Store *store.Store
	Name  string
}

// Close releases the database, if any.
func (l *LoadedWorld) Close() error {
	if l.Store == nil {
		return nil
	}
	return l.Store.Close()
}

// LoadWorld resolves src.
//
//   - File only: the document is read.
//   - Database and Name: the stored world is loaded.
//   - File and Database: the document is imported under Name (or the file
//     name without extension) and queried from memory.
//
// Connection integrity problems are logged as warnings; they only fail a
// query that actually follows a dangling connection.
func LoadWorld(ctx context.Context, src WorldSource, logger *zap.Logger) (*LoadedWorld, error) {
	if src.File == "" && src.Database == "" {
		return nil, &LoadError{Code: ErrCodeUsage, Message: "one of --file or --db is required", ExitCode: ExitCommandError}
	}

	loaded := &LoadedWorld{Name: src.Name}

	if src.File != "" {
		w, err := readWorldFile(src.File)
		if err != nil {
			return nil, err
		}
		loaded.World = w
		if loaded.Name == "" {
			loaded.Name = worldNameFromPath(src.File)
		}
	}

	if src.Database != "" {
		st, err := store.Open(src.Database, store.WithLogger(logger))
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDatabase, Message: "failed to open database", ExitCode: ExitCommandError, Err: err}
		}
		loaded.Store = st

		if loaded.World != nil {
			rev, err := st.SaveWorld(ctx, loaded.Name, loaded.World)
			if err != nil {
				st.Close()
				return nil, &LoadError{Code: ErrCodeDatabase, Message: "failed to store world", ExitCode: ExitCommandError, Err: err}
			}
			logger.Debug("world imported", zap.String("world", loaded.Name), zap.Int("revision", rev))
		} else {
			if loaded.Name == "" {
				st.Close()
				return nil, &LoadError{Code: ErrCodeUsage, Message: "--world is required when reading from --db", ExitCode: ExitCommandError}
			}
			w, err := st.LoadWorld(ctx, loaded.Name)
			if err != nil {
				st.Close()
				if errors.Is(err, store.ErrWorldNotFound) {
					return nil, &LoadError{Code: ErrCodeWorldNotFound, Message: fmt.Sprintf("world %q not found", loaded.Name), ExitCode: ExitCommandError}
				}
				return nil, &LoadError{Code: ErrCodeDatabase, Message: "failed to load world", ExitCode: ExitCommandError, Err: err}
			}
			loaded.World = w
		}
	}

	for _, err := range multierr.Errors(loaded.World.Validate()) {
		logger.Warn("world integrity", zap.String("world", loaded.Name), zap.Error(err))
	}
	logger.Debug("world loaded", zap.String("world", loaded.Name), zap.Int("entities", loaded.World.Len()))

	return loaded, nil
}

func readWorldFile(path string) (*world.World, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("world file not found: %s", path), ExitCode: ExitCommandError}
	}
	w, err := world.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeWorldInvalid, Message: "failed to read world", ExitCode: ExitCommandError, Err: err}
	}
	return w, nil
}

// worldNameFromPath turns "worlds/gears.json" into "gears".
func worldNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// failLoad reports a LoadWorld error through the formatter.
func failLoad(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, loadErr.Err)
		}
		return formatter.Fail(loadErr.ExitCode, loadErr.Code, msg, nil)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

// queryErrorCode maps a Solve error to its CLI error code.
func queryErrorCode(err error) string {
	switch {
	case formula.IsSyntaxError(err):
		return ErrCodeSyntax
	case eval.IsUnboundVariable(err):
		return ErrCodeUnbound
	case eval.IsDanglingReference(err):
		return ErrCodeDangling
	case eval.IsStepsExceeded(err):
		return ErrCodeStepsExceeded
	default:
		return ErrCodeGeneric
	}
}

// syntaxDetails extracts position details from a syntax error, or nil.
func syntaxDetails(err error) map[string]any {
	var synErr *formula.SyntaxError
	if !errors.As(err, &synErr) {
		return nil
	}
	return map[string]any{
		"line":   synErr.Line,
		"column": synErr.Column,
		"token":  synErr.Token,
	}
}
