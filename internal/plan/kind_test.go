package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"remapper/internal/diagnostic"
)

func TestKindPlans(t *testing.T) {
	tests := []struct {
		kind Kind
		want []string
	}{
		{MojangToSpigot, []string{"mojang->obf", "obf->spigot"}},
		{MojangToObf, []string{"mojang->obf"}},
		{ObfToMojang, []string{"obf->mojang"}},
		{ObfToSpigot, []string{"obf->spigot"}},
		{SpigotToMojang, []string{"spigot->obf", "obf->mojang"}},
		{SpigotToObf, []string{"spigot->obf"}},
	}

	require.Len(t, Kinds(), len(tests))

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.True(t, tt.kind.Valid())
			assert.Equal(t, tt.want, tt.kind.Plan().Names())
		})
	}

	assert.False(t, Kind(0).Valid())
	assert.Empty(t, Kind(0).Plan())
	assert.Equal(t, "Kind(0)", Kind(0).String())
}

func TestTwoHopKindsAreCompositions(t *testing.T) {
	assert.Equal(t, []string{"mojang->obf", "obf->spigot"}, MojangToSpigot.Plan().Names())
	assert.Equal(t, []string{"spigot->obf", "obf->mojang"}, SpigotToMojang.Plan().Names())
	assert.Equal(t, MojangToObf.Plan().Then(ObfToSpigot.Plan()).Names(), MojangToSpigot.Plan().Names())
	assert.Equal(t, SpigotToObf.Plan().Then(ObfToMojang.Plan()).Names(), SpigotToMojang.Plan().Names())
}

func TestPlanIsACopy(t *testing.T) {
	p := MojangToSpigot.Plan()
	p[0] = ObfMojang

	assert.Equal(t, "mojang->obf", MojangToSpigot.Plan()[0].Name)
}

func TestProcedureCoordinates(t *testing.T) {
	assert.Equal(t, "org.spigotmc:minecraft-server:1.20.4-R0.1-SNAPSHOT:maps-mojang@txt", MojangObf.Mapping("1.20.4-R0.1-SNAPSHOT"))
	assert.Equal(t, "org.spigotmc:spigot:1.20.4-R0.1-SNAPSHOT:remapped-mojang", MojangObf.Inheritance("1.20.4-R0.1-SNAPSHOT"))
	assert.Equal(t, "org.spigotmc:spigot:1.20.4-R0.1-SNAPSHOT", SpigotObf.Inheritance("1.20.4-R0.1-SNAPSHOT"))
	assert.True(t, MojangObf.Reversed)
	assert.True(t, SpigotObf.Reversed)
	assert.False(t, ObfMojang.Reversed)
	assert.False(t, ObfSpigot.Reversed)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in        string
		want      Kind
		errSubstr string
	}{
		{in: "MOJANG_TO_SPIGOT", want: MojangToSpigot},
		{in: "mojang_to_spigot", want: MojangToSpigot},
		{in: "spigot-to-mojang", want: SpigotToMojang},
		{in: " obf_to_spigot ", want: ObfToSpigot},
		{in: "MOJANG_TO_SPIGT", errSubstr: "did you mean MOJANG_TO_SPIGOT?"},
		{in: "yarn", errSubstr: "valid: MOJANG_TO_SPIGOT, MOJANG_TO_OBF"},
		{in: "", errSubstr: "unknown translation kind"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.errSubstr != "" {
				require.ErrorIs(t, err, diagnostic.ErrConfiguration)
				assert.ErrorContains(t, err, tt.errSubstr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKind("yarn")
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestKindFlagValue(t *testing.T) {
	var k Kind
	require.NoError(t, k.Set("obf_to_mojang"))
	assert.Equal(t, ObfToMojang, k)
	assert.Equal(t, "kind", k.Type())
	assert.Error(t, k.Set("nope"))
	assert.Equal(t, ObfToMojang, k)
}

func TestKindYAML(t *testing.T) {
	var job struct {
		Kind Kind `yaml:"kind"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("kind: mojang_to_spigot\n"), &job))
	assert.Equal(t, MojangToSpigot, job.Kind)

	out, err := yaml.Marshal(job)
	require.NoError(t, err)
	assert.Equal(t, "kind: MOJANG_TO_SPIGOT\n", string(out))

	err = yaml.Unmarshal([]byte("kind: [a]\n"), &job)
	assert.ErrorContains(t, err, "must be a string")

	err = yaml.Unmarshal([]byte("kind: mojang\n"), &job)
	assert.ErrorContains(t, err, "line 1")
}
