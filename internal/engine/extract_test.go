package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractItems(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"list key", `{"code":1,"list":[{"vod_name":"a"},{"vod_name":"b"}]}`, []string{"a", "b"}},
		{"data key", `{"data":[{"vod_name":"a"}]}`, []string{"a"}},
		{"list preferred over data", `{"list":[{"vod_name":"l"}],"data":[{"vod_name":"d"}]}`, []string{"l"}},
		{"empty list falls through to data", `{"list":[],"data":[{"vod_name":"d"}]}`, []string{"d"}},
		{"null list falls through to data", `{"list":null,"data":[{"vod_name":"d"}]}`, []string{"d"}},
		{"neither key", `{"msg":"ok","total":0}`, []string{}},
		{"list not an array", `{"list":"oops","data":[{"vod_name":"d"}]}`, []string{}},
		{"data not an array", `{"data":{"vod_name":"d"}}`, []string{}},
		{"non-object elements skipped", `{"list":[1,"x",{"vod_name":"a"},null]}`, []string{"a"}},
		{"invalid json", `<html>oops</html>`, []string{}},
		{"json followed by php warning", `{"list":[{"vod_name":"a"}]}<br /><b>Warning</b>: mysql gone away`, []string{}},
		{"two json values", `{"list":[{"vod_name":"a"}]}{"list":[]}`, []string{}},
		{"trailing whitespace", "{\"list\":[{\"vod_name\":\"a\"}]}\n\t ", []string{"a"}},
		{"top-level array", `[{"vod_name":"a"}]`, []string{}},
		{"top-level null", `null`, []string{}},
		{"empty body", ``, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractItems([]byte(tt.raw))
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestParseItems_ReportsReason(t *testing.T) {
	_, err := parseItems([]byte(`not json`))
	assert.Error(t, err)

	_, err = parseItems([]byte(`{"list":"oops"}`))
	assert.Error(t, err)

	_, err = parseItems([]byte(`{"list":[{"vod_name":"a"}]}<b>Warning</b>`))
	assert.ErrorIs(t, err, errTrailingData)

	items, err := parseItems([]byte(`{"list":[]}`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExtractItems_KeepsNumbersExact(t *testing.T) {
	got := ExtractItems([]byte(`{"list":[{"vod_id":9007199254740993,"vod_name":"big"}]}`))
	require.Len(t, got, 1)
	assert.Equal(t, json.Number("9007199254740993"), got[0]["vod_id"])
}

func TestStamp_ProvenanceWins(t *testing.T) {
	items := []Item{{"vod_name": "X", "site_key": "spoofed", "site_name": "spoofed"}}
	stamp(items, Provider{Key: "a", Name: "Site A"})
	assert.Equal(t, "a", items[0][FieldSiteKey])
	assert.Equal(t, "Site A", items[0][FieldSiteName])
}

func TestDedupByName(t *testing.T) {
	items := []Item{
		{"vod_name": "X", "from": "a"},
		{"vod_name": "Y"},
		{"vod_id": 1},
		{"vod_name": ""},
		{"vod_name": nil},
		{"vod_name": "X", "from": "b"},
		{"vod_name": json.Number("7")},
		{"vod_name": "7"},
		{"vod_name": json.Number("7")},
		{"vod_name": "Z"},
	}

	t.Run("first occurrence wins", func(t *testing.T) {
		got := DedupByName(items, 0)
		assert.Equal(t, []string{"X", "Y", "7", "7", "Z"}, names(got))
		assert.Equal(t, "a", got[0]["from"])
	})

	t.Run("string and number names differ", func(t *testing.T) {
		got := DedupByName(items, 0)
		assert.IsType(t, json.Number(""), got[2][FieldVodName])
		assert.IsType(t, "", got[3][FieldVodName])
	})

	t.Run("truncates", func(t *testing.T) {
		got := DedupByName(items, 2)
		assert.Equal(t, []string{"X", "Y"}, names(got))
	})
}

func TestDedupByNameProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// 0 stands for an empty name; 1..7 map to "a".."g".
	nameOf := func(n int) string {
		if n == 0 {
			return ""
		}
		return string(rune('a' + n - 1))
	}
	toItems := func(ns []int) []Item {
		items := make([]Item, len(ns))
		for i, n := range ns {
			items[i] = Item{FieldVodName: nameOf(n), "pos": i}
		}
		return items
	}
	nameGen := gen.SliceOf(gen.IntRange(0, 7))

	properties.Property("output names are unique and non-empty", prop.ForAll(
		func(ns []int, limit int) bool {
			seen := map[string]bool{}
			for _, it := range DedupByName(toItems(ns), limit) {
				n := it[FieldVodName].(string)
				if n == "" || seen[n] {
					return false
				}
				seen[n] = true
			}
			return true
		},
		nameGen, gen.IntRange(0, 10),
	))

	properties.Property("length is bounded by limit", prop.ForAll(
		func(ns []int, limit int) bool {
			got := DedupByName(toItems(ns), limit)
			return limit == 0 || len(got) <= limit
		},
		nameGen, gen.IntRange(0, 10),
	))

	properties.Property("keeps first occurrence in input order", prop.ForAll(
		func(ns []int) bool {
			got := DedupByName(toItems(ns), 0)
			first := map[int]int{}
			var order []int
			for i, n := range ns {
				if _, ok := first[n]; !ok && n != 0 {
					first[n] = i
					order = append(order, i)
				}
			}
			if len(got) != len(order) {
				return false
			}
			for i, it := range got {
				if it["pos"].(int) != order[i] {
					return false
				}
			}
			return true
		},
		nameGen,
	))

	properties.Property("truncation is a prefix of the untruncated result", prop.ForAll(
		func(ns []int, limit int) bool {
			full := DedupByName(toItems(ns), 0)
			cut := DedupByName(toItems(ns), limit)
			return fmt.Sprint(names(cut)) == fmt.Sprint(names(full[:len(cut)]))
		},
		nameGen, gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

func TestParseItems_LogsDroppedElements(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	items, err := parseItems([]byte(`{"list":[1,{"vod_name":"a"},"x"]}`))
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Contains(t, buf.String(), "non-object items dropped")
	assert.Contains(t, buf.String(), "dropped=2")
}
