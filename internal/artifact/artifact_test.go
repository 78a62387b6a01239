package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remapper/internal/diagnostic"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in       string
		want     Coordinate
		str      string
		path     string
		errorsIs error
	}{
		{
			in:   "org.spigotmc:minecraft-server:1.20.4-R0.1-SNAPSHOT:maps-mojang@txt",
			want: Coordinate{"org.spigotmc", "minecraft-server", "1.20.4-R0.1-SNAPSHOT", "maps-mojang", "txt"},
			str:  "org.spigotmc:minecraft-server:1.20.4-R0.1-SNAPSHOT:maps-mojang@txt",
			path: "org/spigotmc/minecraft-server/1.20.4-R0.1-SNAPSHOT/minecraft-server-1.20.4-R0.1-SNAPSHOT-maps-mojang.txt",
		},
		{
			in:   "org.spigotmc:spigot:1.20.4-R0.1-SNAPSHOT",
			want: Coordinate{"org.spigotmc", "spigot", "1.20.4-R0.1-SNAPSHOT", "", "jar"},
			str:  "org.spigotmc:spigot:1.20.4-R0.1-SNAPSHOT",
			path: "org/spigotmc/spigot/1.20.4-R0.1-SNAPSHOT/spigot-1.20.4-R0.1-SNAPSHOT.jar",
		},
		{
			in:   " g:a:1:remapped-obf ",
			want: Coordinate{"g", "a", "1", "remapped-obf", "jar"},
			str:  "g:a:1:remapped-obf",
			path: "g/a/1/a-1-remapped-obf.jar",
		},
		{in: "g:a", errorsIs: diagnostic.ErrConfiguration},
		{in: "g:a:1:c:extra", errorsIs: diagnostic.ErrConfiguration},
		{in: "g::1", errorsIs: diagnostic.ErrConfiguration},
		{in: "g:a:1@", errorsIs: diagnostic.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCoordinate(tt.in)
			if tt.errorsIs != nil {
				require.ErrorIs(t, err, tt.errorsIs)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.str, c.String())
			assert.Equal(t, tt.path, c.Path())
		})
	}
}

func TestMustParseCoordinatePanics(t *testing.T) {
	assert.Panics(t, func() { MustParseCoordinate("nope") })
}

func install(t *testing.T, root string, c Coordinate) string {
	t.Helper()

	p := filepath.Join(root, filepath.FromSlash(c.Path()))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(c.String()), 0o644))

	return p
}

func TestLocalRepository(t *testing.T) {
	root := t.TempDir()
	present := MustParseCoordinate("org.spigotmc:spigot:1.0:remapped-obf")
	want := install(t, root, present)

	repo := LocalRepository{Root: root}

	files, err := repo.Resolve(context.Background(), present)
	require.NoError(t, err)
	assert.Equal(t, []string{want}, files)

	_, err = repo.Resolve(context.Background(), MustParseCoordinate("org.spigotmc:spigot:2.0"))
	require.ErrorIs(t, err, diagnostic.ErrArtifactNotFound)

	var de *diagnostic.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "org.spigotmc:spigot:2.0", de.Coordinate)
}

func TestStatic(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "maps.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	s := Static{
		"g:a:1@txt": {file},
		"g:a:2@txt": {filepath.Join(dir, "gone.txt")},
	}

	files, err := s.Resolve(context.Background(), MustParseCoordinate("g:a:1@txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)

	_, err = s.Resolve(context.Background(), MustParseCoordinate("g:a:2@txt"))
	require.ErrorIs(t, err, diagnostic.ErrArtifactNotFound)

	_, err = s.Resolve(context.Background(), MustParseCoordinate("g:a:3@txt"))
	require.ErrorIs(t, err, diagnostic.ErrArtifactNotFound)
}

type countingResolver struct {
	calls int
	files []string
	err   error
}

func (r *countingResolver) Resolve(context.Context, Coordinate) ([]string, error) {
	r.calls++
	return r.files, r.err
}

func TestChain(t *testing.T) {
	c := MustParseCoordinate("g:a:1")
	miss := &countingResolver{err: NotFound(c, errors.New("miss"))}
	hit := &countingResolver{files: []string{"/x.jar"}}
	broken := &countingResolver{err: errors.New("permission denied")}

	files, err := Chain{miss, hit, broken}.Resolve(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []string{"/x.jar"}, files)
	assert.Equal(t, 0, broken.calls)

	_, err = Chain{miss, broken, hit}.Resolve(context.Background(), c)
	require.Error(t, err)
	assert.NotErrorIs(t, err, diagnostic.ErrArtifactNotFound)

	_, err = Chain{miss, miss}.Resolve(context.Background(), c)
	require.ErrorIs(t, err, diagnostic.ErrArtifactNotFound)

	_, err = Chain{}.Resolve(context.Background(), c)
	require.ErrorIs(t, err, diagnostic.ErrArtifactNotFound)
}

func TestCachedMemoizesHitsOnly(t *testing.T) {
	c := MustParseCoordinate("g:a:1")
	next := &countingResolver{files: []string{"/x.jar"}}

	cached, err := NewCached(next, 0)
	require.NoError(t, err)

	for range 3 {
		files, err := cached.Resolve(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, []string{"/x.jar"}, files)
	}

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cached.Len())

	next.err = NotFound(c, errors.New("miss"))

	_, err = cached.Resolve(context.Background(), MustParseCoordinate("g:b:1"))
	require.ErrorIs(t, err, diagnostic.ErrArtifactNotFound)
	assert.Equal(t, 1, cached.Len())
}

func TestNewS3Repository(t *testing.T) {
	tests := []struct {
		name    string
		cfg     S3Config
		wantErr string
	}{
		{"missing endpoint", S3Config{Bucket: "b", CacheDir: "/tmp"}, "endpoint"},
		{"missing bucket", S3Config{Endpoint: "localhost:9000", CacheDir: "/tmp"}, "bucket"},
		{"missing cache dir", S3Config{Endpoint: "localhost:9000", Bucket: "b"}, "cache directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Repository(tt.cfg)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}

	repo, err := NewS3Repository(S3Config{Endpoint: "localhost:9000", Bucket: "maven", Prefix: "/releases/", CacheDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "releases/g/a/1/a-1-c.jar", repo.Key(MustParseCoordinate("g:a:1:c")))
}

func TestS3RepositoryServesCachedFile(t *testing.T) {
	dir := t.TempDir()
	c := MustParseCoordinate("g:a:1")
	want := install(t, dir, c)

	repo, err := NewS3Repository(S3Config{Endpoint: "localhost:1", Bucket: "maven", CacheDir: dir})
	require.NoError(t, err)

	files, err := repo.Resolve(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []string{want}, files)
}
