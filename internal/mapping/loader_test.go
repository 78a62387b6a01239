package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remapper/internal/diagnostic"
)

const mojangSample = `# {"fileName":"server.txt","id":"sourceFile"}
net.minecraft.world.Entity -> a:
    int tickCount -> b
    net.minecraft.world.Level level -> c
    # {"fileName":"Entity.java","id":"sourceFile"}
    1:4:void tick() -> d
    5:9:boolean hurt(net.minecraft.world.DamageSource,float) -> a
    10:10:net.minecraft.world.Entity[] passengers(int[],java.lang.String) -> e
    11:11:void net.minecraft.util.Mth.clamp():100:100 -> f
    12:12:void <init>(net.minecraft.world.Level) -> <init>
net.minecraft.world.Level -> b:
    java.util.List entities -> a
net.minecraft.world.DamageSource -> c:
net.minecraft.world.Entity$RemovalReason -> a$a:
`

func TestParseProGuard(t *testing.T) {
	tbl, err := Parse([]byte(mojangSample), false)
	require.NoError(t, err)

	assert.Equal(t, FormatProGuard, tbl.Format())
	assert.Equal(t, Counts{Classes: 4, Fields: 3, Methods: 4}, tbl.Counts())

	assert.Equal(t, "net/minecraft/world/Entity", tbl.MapClass("a"))
	assert.Equal(t, "net/minecraft/world/Entity$RemovalReason", tbl.MapClass("a$a"))
	assert.Equal(t, "java/lang/String", tbl.MapClass("java/lang/String"))

	v, ok := tbl.Field("a", "b")
	require.True(t, ok)
	assert.Equal(t, "tickCount", v)

	v, ok = tbl.Method("a", "a", "(Lc;F)Z")
	require.True(t, ok, "descriptor must be expressed in obfuscated names")
	assert.Equal(t, "hurt", v)

	v, ok = tbl.Method("a", "e", "([ILjava/lang/String;)[La;")
	require.True(t, ok)
	assert.Equal(t, "passengers", v)

	_, ok = tbl.Method("a", "f", "()V")
	assert.False(t, ok, "inlined members from other classes are skipped")
}

func TestParseProGuardReversed(t *testing.T) {
	tbl, err := Parse([]byte(mojangSample), true)
	require.NoError(t, err)

	assert.Equal(t, "a", tbl.MapClass("net/minecraft/world/Entity"))

	v, ok := tbl.Field("net/minecraft/world/Entity", "tickCount")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = tbl.Method("net/minecraft/world/Entity", "hurt", "(Lnet/minecraft/world/DamageSource;F)Z")
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestParseCSRG(t *testing.T) {
	data := `# spigot members
a net/minecraft/server/Entity
a b tickCount
a d ()V tick
a a (Lc;F)Z hurt
net/minecraft/ net/minecraft/server/
`
	tbl, err := Parse([]byte(data), false)
	require.NoError(t, err)

	assert.Equal(t, FormatCSRG, tbl.Format())
	assert.Equal(t, Counts{Classes: 1, Packages: 1, Fields: 1, Methods: 2}, tbl.Counts())
	assert.Equal(t, "net/minecraft/server/Entity", tbl.MapClass("a"))
	assert.Equal(t, "net/minecraft/server/Block", tbl.MapClass("net/minecraft/Block"))
	assert.Equal(t, "other/Block", tbl.MapClass("other/Block"))

	v, ok := tbl.Method("a", "d", "()V")
	require.True(t, ok)
	assert.Equal(t, "tick", v)
}

func TestParseSRG(t *testing.T) {
	data := `PK: . net/minecraft/src
CL: a net/minecraft/src/Entity
FD: a/b net/minecraft/src/Entity/tickCount
MD: a/d ()V net/minecraft/src/Entity/tick ()V
`
	tbl, err := Parse([]byte(data), false)
	require.NoError(t, err)

	assert.Equal(t, FormatSRG, tbl.Format())
	assert.Equal(t, "net/minecraft/src/Entity", tbl.MapClass("a"))
	assert.Equal(t, "net/minecraft/src/Other", tbl.MapClass("Other"))

	v, ok := tbl.Field("a", "b")
	require.True(t, ok)
	assert.Equal(t, "tickCount", v)

	v, ok = tbl.Method("a", "d", "()V")
	require.True(t, ok)
	assert.Equal(t, "tick", v)
}

func TestParseCSV(t *testing.T) {
	data := `kind,owner,name,descriptor,target
class,a,,,net/minecraft/Entity
field,a,b,,tickCount
method,a,d,()V,tick
package,x/,,,y/
`
	tbl, err := Parse([]byte(data), false)
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, tbl.Format())
	assert.Equal(t, Counts{Classes: 1, Packages: 1, Fields: 1, Methods: 1}, tbl.Counts())
	assert.Equal(t, "y/Z", tbl.MapClass("x/Z"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line string
	}{
		{"csrg too many columns", "a b c d e\n", ":1:"},
		{"csrg bad descriptor", "a\tb\n\na b V c\n", ":3:"},
		{"proguard member before class", "    int a -> b\nx.Y -> a:\n", ":1:"},
		{"proguard missing arrow", "x.Y -> a:\n    int a b\n", ":2:"},
		{"srg unknown kind", "CL: a b\nXX: a b\n", ":2:"},
		{"srg short method", "MD: a/b ()V c\n", ":1:"},
		{"csv wrong columns", "class,a,b\n", ":1:"},
		{"csv unknown kind", "class,a,,,b\nenum,a,,,b\n", ":2:"},
		{"empty", "", ":0: no mapping entries"},
		{"comments only", "# nothing here\n\n", ":0: no mapping entries"},
		{"csv header only", "kind,owner,name,descriptor,target\n", ":0: no mapping entries"},
		{"zip header", "PK\x03\x04\x14\x00 binary junk", ":1: column"},
		{"invalid utf-8", "a/B \xff\xfe\n", ":1: column"},
		{"srg control character", "CL: a b\x07c\n", ":1: column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), false)
			require.ErrorIs(t, err, diagnostic.ErrMappingFormat)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, FormatUnknown, Detect([]byte("\n# only comments\n")))
	assert.Equal(t, FormatProGuard, Detect([]byte("a.B -> c:\n")))
	assert.Equal(t, FormatSRG, Detect([]byte("CL: a b\n")))
	assert.Equal(t, FormatCSV, Detect([]byte("class,a,,,b\n")))
	assert.Equal(t, FormatCSRG, Detect([]byte("a b\n")))
	assert.Equal(t, "ProGuard", FormatProGuard.String())
}

func TestReverseTwiceIsIdentity(t *testing.T) {
	tbl, err := Parse([]byte(mojangSample), false)
	require.NoError(t, err)

	assert.Equal(t, tbl, tbl.Reverse().Reverse())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maps-mojang.txt")
	require.NoError(t, os.WriteFile(path, []byte(mojangSample), 0o644))

	tbl, err := LoadFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, "a", tbl.MapClass("net/minecraft/world/Entity"))

	_, err = LoadFile(filepath.Join(dir, "missing.txt"), false)
	require.ErrorIs(t, err, diagnostic.ErrArtifactNotFound)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csrg")
	b := filepath.Join(dir, "b.csrg")
	require.NoError(t, os.WriteFile(a, []byte("a b\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("a b\n"), 0o644))

	cache, err := NewCache(2)
	require.NoError(t, err)

	t1, err := cache.Load(a, false)
	require.NoError(t, err)
	t2, err := cache.Load(b, false)
	require.NoError(t, err)
	assert.Same(t, t1, t2, "identical content shares one table")

	t3, err := cache.Load(a, true)
	require.NoError(t, err)
	assert.NotSame(t, t1, t3)
	assert.Equal(t, "a", t3.MapClass("b"))
	assert.Equal(t, 2, cache.Len())

	var none *Cache
	t4, err := none.Load(a, false)
	require.NoError(t, err)
	assert.Equal(t, "b", t4.MapClass("a"))
}
