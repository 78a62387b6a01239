package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"remapper/internal/artifact"
	"remapper/internal/diagnostic"
	"remapper/internal/hierarchy"
	"remapper/internal/mapping"
	"remapper/internal/rewrite"
)

// Locator turns a version identifier into an artifact coordinate.
type Locator func(version string) string

// Coordinate returns a Locator that substitutes the version into pattern at
// every "{version}".
func Coordinate(pattern string) Locator {
	return func(version string) string {
		return strings.ReplaceAll(pattern, "{version}", version)
	}
}

// Procedure is one hop of renaming between two naming conventions.
type Procedure struct {
	Name        string
	Mapping     Locator
	Inheritance Locator
	// Reversed inverts the mapping table's declared direction.
	Reversed bool
}

// The known procedures. The Mojang table is declared obfuscated -> Mojang
// and the Spigot table obfuscated -> Spigot.
var (
	MojangObf = Procedure{
		Name:        "mojang->obf",
		Mapping:     Coordinate("org.spigotmc:minecraft-server:{version}:maps-mojang@txt"),
		Inheritance: Coordinate("org.spigotmc:spigot:{version}:remapped-mojang"),
		Reversed:    true,
	}
	ObfMojang = Procedure{
		Name:        "obf->mojang",
		Mapping:     Coordinate("org.spigotmc:minecraft-server:{version}:maps-mojang@txt"),
		Inheritance: Coordinate("org.spigotmc:spigot:{version}:remapped-obf"),
	}
	ObfSpigot = Procedure{
		Name:        "obf->spigot",
		Mapping:     Coordinate("org.spigotmc:minecraft-server:{version}:maps-spigot@csrg"),
		Inheritance: Coordinate("org.spigotmc:spigot:{version}:remapped-obf"),
	}
	SpigotObf = Procedure{
		Name:        "spigot->obf",
		Mapping:     Coordinate("org.spigotmc:minecraft-server:{version}:maps-spigot@csrg"),
		Inheritance: Coordinate("org.spigotmc:spigot:{version}"),
		Reversed:    true,
	}
)

// Plan is an ordered list of procedures; composing plans is concatenation.
type Plan []Procedure

// Then returns p followed by next.
func (p Plan) Then(next Plan) Plan {
	out := make(Plan, 0, len(p)+len(next))
	return append(append(out, p...), next...)
}

// Names returns the procedure names in order.
func (p Plan) Names() []string {
	out := make([]string, len(p))
	for i, proc := range p {
		out[i] = proc.Name
	}

	return out
}

func (p Plan) String() string { return strings.Join(p.Names(), ", ") }

// Env carries what procedures need from the invocation that runs them.
type Env struct {
	Resolver artifact.Resolver
	// Tables may be nil, in which case every run parses its mapping file.
	Tables *mapping.Cache
	Log    *logrus.Logger
	// Diagnostics may be nil.
	Diagnostics *diagnostic.Diagnostics
	// ExtraInheritance lists archives indexed after the resolved ones.
	ExtraInheritance []string
	// RequireInheritance fails a run whose inheritance artifact cannot be
	// resolved instead of indexing the input archive only.
	RequireInheritance bool
}

func (e Env) logger() *logrus.Logger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}

	return e.Log
}

// Run renames the archive at in into out using the artifacts p resolves for
// version.
func (p Procedure) Run(ctx context.Context, env Env, version, in, out string) (rewrite.Stats, error) {
	if env.Resolver == nil {
		return rewrite.Stats{}, fmt.Errorf("%w: procedure %s has no artifact resolver", diagnostic.ErrConfiguration, p.Name)
	}

	log := env.logger()
	entry := log.WithFields(logrus.Fields{"procedure": p.Name, "version": version})

	tablePath, err := p.resolveMapping(ctx, env, version)
	if err != nil {
		return rewrite.Stats{}, err
	}

	table, err := env.Tables.Load(tablePath, p.Reversed)
	if err != nil {
		return rewrite.Stats{}, err
	}

	counts := table.Counts()
	entry.WithFields(logrus.Fields{
		"mapping": tablePath,
		"format":  table.Format(),
		"classes": counts.Classes,
		"fields":  counts.Fields,
		"methods": counts.Methods,
	}).Debug("Mapping table loaded")

	archives, err := p.inheritanceArchives(ctx, env, entry, version, in)
	if err != nil {
		return rewrite.Stats{}, err
	}

	hc, err := hierarchy.Build(ctx, archives,
		hierarchy.WithLogger(diagnostic.Quiet(log)),
		hierarchy.WithDiagnostics(env.Diagnostics),
	)
	if err != nil {
		return rewrite.Stats{}, err
	}

	stats, err := rewrite.Archive(ctx, in, out, mapping.NewRemapper(table, hc), rewrite.WithLogger(entry))
	if err != nil {
		return stats, err
	}

	entry.WithFields(logrus.Fields{
		"classes":   stats.Classes,
		"renamed":   stats.Renamed,
		"resources": stats.Resources,
	}).Info("Procedure finished")

	return stats, nil
}

func (p Procedure) resolveMapping(ctx context.Context, env Env, version string) (string, error) {
	c, err := artifact.ParseCoordinate(p.Mapping(version))
	if err != nil {
		return "", err
	}

	files, err := env.Resolver.Resolve(ctx, c)
	if err != nil {
		return "", err
	}

	if len(files) == 0 {
		return "", artifact.NotFound(c, errors.New("resolver returned no files"))
	}

	return files[0], nil
}

// inheritanceArchives lists the input archive first, then the resolved
// inheritance artifact, then any extra archives. A missing inheritance
// artifact is reported and skipped unless env requires it.
func (p Procedure) inheritanceArchives(ctx context.Context, env Env, entry *logrus.Entry, version, in string) ([]string, error) {
	archives := []string{in}

	if p.Inheritance != nil {
		c, err := artifact.ParseCoordinate(p.Inheritance(version))
		if err != nil {
			return nil, err
		}

		files, err := env.Resolver.Resolve(ctx, c)

		switch {
		case err == nil:
			archives = append(archives, files...)
		case errors.Is(err, diagnostic.ErrArtifactNotFound) && !env.RequireInheritance:
			entry.WithField("coordinate", c.String()).Warn("Inheritance artifact not found, indexing the input archive only")
			env.Diagnostics.AddWarning("inheritance_missing", err.Error(), "", "")
		default:
			return nil, err
		}
	}

	return append(archives, env.ExtraInheritance...), nil
}
