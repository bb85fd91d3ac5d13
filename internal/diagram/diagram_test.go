package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLanes(t *testing.T) *Diagram {
	t.Helper()
	d := New("test")
	require.NoError(t, d.AddLane(Lane{ID: "a", Name: "Alpha"}))
	require.NoError(t, d.AddLane(Lane{ID: "b"}))
	return d
}

func TestMutationsNotifyHooks(t *testing.T) {
	d := twoLanes(t)
	calls := 0
	d.OnChange(func() { calls++ })

	id, err := d.AddBox(Box{LaneID: "a", Start: 0, Duration: 100})
	require.NoError(t, err)
	assert.Equal(t, "box-1", id)

	require.NoError(t, d.MoveBox(id, 50, "b"))
	require.NoError(t, d.ResizeBox(id, 40, 200))
	require.NoError(t, d.RemoveBox(id))
	require.NoError(t, d.AddLane(Lane{ID: "c"}))
	require.NoError(t, d.RemoveLane("c"))

	assert.Equal(t, 6, calls)
}

func TestFailedMutationsDoNotNotify(t *testing.T) {
	d := twoLanes(t)
	calls := 0
	d.OnChange(func() { calls++ })

	_, err := d.AddBox(Box{LaneID: "missing"})
	assert.ErrorIs(t, err, ErrUnknownLane)
	assert.ErrorIs(t, d.MoveBox("nope", 1, ""), ErrUnknownBox)
	assert.ErrorIs(t, d.ResizeBox("nope", 1, 1), ErrUnknownBox)
	assert.ErrorIs(t, d.RemoveBox("nope"), ErrUnknownBox)
	assert.ErrorIs(t, d.RemoveLane("nope"), ErrUnknownLane)
	assert.ErrorIs(t, d.AddLane(Lane{ID: "a"}), ErrDuplicateID)
	assert.Error(t, d.AddLane(Lane{}))

	_, err = d.AddBox(Box{ID: "x", LaneID: "a"})
	require.NoError(t, err)
	_, err = d.AddBox(Box{ID: "x", LaneID: "b"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.ErrorIs(t, d.MoveBox("x", 0, "missing"), ErrUnknownLane)

	assert.Equal(t, 1, calls)
}

func TestRemoveLaneDropsItsBoxes(t *testing.T) {
	d := twoLanes(t)
	_, err := d.AddBox(Box{ID: "a1", LaneID: "a", Duration: 10})
	require.NoError(t, err)
	_, err = d.AddBox(Box{ID: "b1", LaneID: "b", Duration: 10})
	require.NoError(t, err)

	require.NoError(t, d.RemoveLane("a"))
	assert.Len(t, d.Lanes, 1)
	require.Len(t, d.Boxes, 1)
	assert.Equal(t, "b1", d.Boxes[0].ID)
	assert.Empty(t, d.LaneBoxes("a"))
}

func TestIntervals(t *testing.T) {
	d := twoLanes(t)
	_, err := d.AddBox(Box{ID: "x", LaneID: "a", Start: 5, Duration: 10, Label: "ignored"})
	require.NoError(t, err)

	iv := d.Intervals()
	require.Len(t, iv, 1)
	assert.Equal(t, "x", iv[0].ID)
	assert.Equal(t, "a", iv[0].LaneID)
	assert.Equal(t, 5.0, iv[0].Start)
	assert.Equal(t, 15.0, iv[0].End())
}

func TestGeneratedIDsSkipTakenOnes(t *testing.T) {
	d := twoLanes(t)
	_, err := d.AddBox(Box{ID: "box-1", LaneID: "a"})
	require.NoError(t, err)
	id, err := d.AddBox(Box{LaneID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "box-2", id)
}

func TestLaneTitle(t *testing.T) {
	assert.Equal(t, "Alpha", Lane{ID: "a", Name: "Alpha"}.Title())
	assert.Equal(t, "b", Lane{ID: "b"}.Title())
}

func TestParseYAML(t *testing.T) {
	doc := `
lanes:
  - id: build
    name: Build
  - id: test
boxes:
  - id: compile
    lane: build
    label: Compile
    start: 0
    duration: 1200
  - id: unit
    lane: test
    start: 90000
    duration: 300
`
	d, err := ParseYAML([]byte(doc), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", d.Name)
	assert.Len(t, d.Lanes, 2)
	require.Len(t, d.Boxes, 2)
	assert.Equal(t, Box{ID: "compile", LaneID: "build", Label: "Compile", Start: 0, Duration: 1200}, d.Boxes[0])
}

func TestParseYAMLRejectsUnknownLane(t *testing.T) {
	doc := `
name: broken
lanes: [{id: a}]
boxes: [{id: x, lane: b, start: 0, duration: 1}]
`
	_, err := ParseYAML([]byte(doc), "")
	assert.ErrorIs(t, err, ErrUnknownLane)
}

func TestYAMLSaveAndLoad(t *testing.T) {
	d := twoLanes(t)
	_, err := d.AddBox(Box{ID: "x", LaneID: "b", Start: 10, Duration: 20, Color: "#ff0000"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, SaveYAML(d, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.Name)
	assert.Equal(t, d.Lanes, loaded.Lanes)
	assert.Equal(t, d.Boxes, loaded.Boxes)
}

func TestParseCSVNumbers(t *testing.T) {
	in := "Lane,Label,Start,Duration\nbuild,Compile,0,100\ntest,Unit,5000,100\nbuild,Link,100,50\n"
	d, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, d.Lanes, 2)
	assert.Equal(t, "build", d.Lanes[0].ID)
	assert.Equal(t, "test", d.Lanes[1].ID)

	require.Len(t, d.Boxes, 3)
	assert.Equal(t, "box-1", d.Boxes[0].ID)
	assert.Equal(t, 5000.0, d.Boxes[1].Start)
	assert.Equal(t, "Link", d.Boxes[2].Label)
}

func TestParseCSVTimestamps(t *testing.T) {
	in := strings.Join([]string{
		"id,lane,start,end",
		"a,ops,2024-03-01 10:00,2024-03-01 10:30",
		"b,dev,2024-03-01 09:00,2024-03-01 09:15",
		"c,dev,2024-03-01 12:00:30,2024-03-01 12:01:00",
	}, "\n")

	d, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, d.Boxes, 3)

	assert.Equal(t, 3600000.0, d.Boxes[0].Start)
	assert.Equal(t, 1800000.0, d.Boxes[0].Duration)
	assert.Equal(t, 0.0, d.Boxes[1].Start)
	assert.Equal(t, 30000.0, d.Boxes[2].Duration)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing lane column", "start,duration\n0,1\n"},
		{"missing duration and end", "lane,start\na,0\n"},
		{"bad start", "lane,start,duration\na,yesterday,1\n"},
		{"bad duration", "lane,start,duration\na,0,long\n"},
		{"empty lane", "lane,start,duration\n,0,1\n"},
		{"duplicate id", "id,lane,start,duration\nx,a,0,1\nx,a,5,1\n"},
		{"empty file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestLoadCSVUsesFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprint.csv")
	require.NoError(t, os.WriteFile(path, []byte("lane,start,duration\na,0,10\n"), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sprint", d.Name)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("diagram.json")
	assert.Error(t, err)
}
