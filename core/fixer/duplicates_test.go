package fixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/models"
)

func TestDuplicateFixer_Fix(t *testing.T) {
	f := NewDuplicateFixer(config.Default())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "two hops preserved", in: `from "../../hooks/hooks/use-mobile"`, want: `from "../../hooks/use-mobile"`},
		{name: "one hop", in: `from "../lib/lib/utils"`, want: `from "../lib/utils"`},
		{name: "three hops keeps all hops", in: `from "../../../components/components/header"`, want: `from "../../../components/header"`},
		{name: "tripled one-hop segment", in: `from "../lib/lib/lib/utils"`, want: `from "../lib/utils"`},
		{name: "tripled segment", in: `from "../../hooks/hooks/hooks/use-toast"`, want: `from "../../hooks/use-toast"`},
		{name: "unlisted name untouched", in: `from "../pages/pages/home"`, want: `from "../pages/pages/home"`},
		{name: "no leading hop untouched", in: `from "./hooks/hooks/x"`, want: `from "./hooks/hooks/x"`},
		{name: "similar names untouched", in: `from "../hooks/hooksy/x"`, want: `from "../hooks/hooksy/x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := f.Fix("src/pages/home.tsx", tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuplicateFixer_ReportsRuleHits(t *testing.T) {
	f := NewDuplicateFixer(config.Default())

	in := `import a from "../../hooks/hooks/a";
import b from "../../hooks/hooks/b";
import c from "../lib/lib/c";
`
	_, reps := f.Fix("src/pages/admin/home.tsx", in)

	assert.Equal(t, []models.Replacement{
		{Old: "../../hooks/hooks/", New: "../../hooks/", Count: 2},
		{Old: "../lib/lib/", New: "../lib/", Count: 1},
	}, reps)
}

func TestDuplicateFixer_Idempotent(t *testing.T) {
	f := NewDuplicateFixer(config.Default())

	in := `import a from "../../hooks/hooks/hooks/a";
import b from "../components/components/b";
import c from "../../lib/lib/c";
`
	once, _ := f.Fix("src/x.ts", in)
	twice, reps := f.Fix("src/x.ts", once)

	assert.Equal(t, once, twice)
	assert.Empty(t, reps)
}

func TestDuplicateRules_Order(t *testing.T) {
	rules := DuplicateRules([]string{"hooks", "lib"})

	var froms []string
	for _, r := range rules {
		froms = append(froms, r.from)
	}
	assert.Equal(t, []string{
		"../../hooks/hooks/",
		"../hooks/hooks/",
		"../../lib/lib/",
		"../lib/lib/",
	}, froms)
}
