package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	paysession "github.com/goliatone/go-paysession"
	persistence "github.com/goliatone/go-persistence-bun"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const rootPath = "data/sql/migrations"

// Source is one dialect's migration directory. Postgres files live at the
// root of data/sql/migrations and sqlite files under its sqlite/ folder.
type Source struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type RegisterFunc func(ctx context.Context, dialect string, fsys fs.FS) error

// SQLMigrator is the part of *persistence.Client that Apply needs.
type SQLMigrator interface {
	RegisterSQLMigrations(migrations ...fs.FS) *persistence.Migrations
	Migrate(ctx context.Context) error
}

// Sources resolves the postgres and sqlite migration directories from the
// embedded tree, or from root when one is given. Every directory must hold
// at least one *.up.sql file.
func Sources(root ...fs.FS) ([]Source, error) {
	tree := paysession.GetMigrationsFS()
	if len(root) > 0 && root[0] != nil {
		tree = root[0]
	}
	base, err := fs.Sub(tree, rootPath)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", rootPath, err)
	}
	sqliteFS, err := fs.Sub(base, DialectSQLite)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, Path: rootPath, FS: base},
		{Dialect: DialectSQLite, Path: rootPath + "/" + DialectSQLite, FS: sqliteFS},
	}
	for _, source := range sources {
		matches, globErr := fs.Glob(source.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s: %w", source.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s has no *.up.sql files", source.Path)
		}
	}
	return sources, nil
}

// ForDialect returns the embedded migrations for a dialect. Driver names
// such as sqlite3 or postgresql are accepted.
func ForDialect(dialect string) (fs.FS, error) {
	name := NormalizeDialect(dialect)
	sources, err := Sources()
	if err != nil {
		return nil, err
	}
	for _, source := range sources {
		if source.Dialect == name {
			return source.FS, nil
		}
	}
	return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
}

// Register hands each requested dialect's migrations to registerFn. With no
// dialects both are registered. It returns the dialects it registered.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) ([]string, error) {
	if registerFn == nil {
		return nil, fmt.Errorf("migrations: register function is required")
	}
	sources, err := Sources()
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, dialect := range dialects {
		if name := NormalizeDialect(dialect); name != "" {
			wanted[name] = true
		}
	}

	registered := make([]string, 0, len(sources))
	for _, source := range sources {
		if len(wanted) > 0 && !wanted[source.Dialect] {
			continue
		}
		if err := registerFn(ctx, source.Dialect, source.FS); err != nil {
			return registered, fmt.Errorf("migrations: register %s: %w", source.Dialect, err)
		}
		registered = append(registered, source.Dialect)
	}
	if len(registered) == 0 {
		return nil, fmt.Errorf("migrations: no migrations match dialects %v", dialects)
	}
	return registered, nil
}

// Apply registers the dialect's migrations on client and runs them.
func Apply(ctx context.Context, client SQLMigrator, dialect string) error {
	if client == nil {
		return fmt.Errorf("migrations: persistence client is required")
	}
	fsys, err := ForDialect(dialect)
	if err != nil {
		return err
	}
	client.RegisterSQLMigrations(fsys)
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: apply %s: %w", NormalizeDialect(dialect), err)
	}
	return nil
}

func NormalizeDialect(dialect string) string {
	switch name := strings.ToLower(strings.TrimSpace(dialect)); name {
	case "sqlite", "sqlite3":
		return DialectSQLite
	case "postgres", "postgresql", "pg":
		return DialectPostgres
	default:
		return name
	}
}
