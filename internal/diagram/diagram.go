// Package diagram is the interval model: named lanes holding time-stamped
// boxes. Every mutation notifies the registered change hooks so cached
// geometry can be dropped before the next read.
package diagram

import (
	"errors"
	"fmt"
	"strconv"

	"lanes2svg/internal/compress"
)

var (
	ErrUnknownLane = errors.New("unknown lane")
	ErrUnknownBox  = errors.New("unknown box")
	ErrDuplicateID = errors.New("duplicate id")
)

// Lane is a horizontal track.
type Lane struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color,omitempty"`
}

// Title returns the lane's display name.
func (l Lane) Title() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// Box is a span of time on one lane. Start and Duration are milliseconds.
type Box struct {
	ID       string  `yaml:"id"`
	LaneID   string  `yaml:"lane"`
	Label    string  `yaml:"label,omitempty"`
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
	Color    string  `yaml:"color,omitempty"`
}

// End returns the first instant after the box.
func (b Box) End() float64 {
	return b.Start + b.Duration
}

// Diagram holds lanes and boxes in display order.
type Diagram struct {
	Name  string `yaml:"name"`
	Lanes []Lane `yaml:"lanes"`
	Boxes []Box  `yaml:"boxes"`

	hooks  []func()
	nextID int
}

// New returns an empty diagram.
func New(name string) *Diagram {
	return &Diagram{Name: name}
}

// OnChange registers fn to run after every mutation.
func (d *Diagram) OnChange(fn func()) {
	d.hooks = append(d.hooks, fn)
}

func (d *Diagram) changed() {
	for _, fn := range d.hooks {
		fn()
	}
}

// Validate checks that ids are unique and every box sits on a known lane.
func (d *Diagram) Validate() error {
	lanes := make(map[string]bool, len(d.Lanes))
	for _, l := range d.Lanes {
		if l.ID == "" {
			return fmt.Errorf("lane %q: empty id", l.Name)
		}
		if lanes[l.ID] {
			return fmt.Errorf("lane %q: %w", l.ID, ErrDuplicateID)
		}
		lanes[l.ID] = true
	}

	boxes := make(map[string]bool, len(d.Boxes))
	for _, b := range d.Boxes {
		if b.ID == "" {
			return fmt.Errorf("box on lane %q: empty id", b.LaneID)
		}
		if boxes[b.ID] {
			return fmt.Errorf("box %q: %w", b.ID, ErrDuplicateID)
		}
		boxes[b.ID] = true
		if !lanes[b.LaneID] {
			return fmt.Errorf("box %q: lane %q: %w", b.ID, b.LaneID, ErrUnknownLane)
		}
	}
	return nil
}

// Lane returns the lane with the given id.
func (d *Diagram) Lane(id string) (Lane, bool) {
	i := d.laneIndex(id)
	if i < 0 {
		return Lane{}, false
	}
	return d.Lanes[i], true
}

// Box returns the box with the given id.
func (d *Diagram) Box(id string) (Box, bool) {
	i := d.boxIndex(id)
	if i < 0 {
		return Box{}, false
	}
	return d.Boxes[i], true
}

// LaneBoxes returns the boxes on one lane in insertion order.
func (d *Diagram) LaneBoxes(laneID string) []Box {
	var out []Box
	for _, b := range d.Boxes {
		if b.LaneID == laneID {
			out = append(out, b)
		}
	}
	return out
}

// AddLane appends a lane.
func (d *Diagram) AddLane(l Lane) error {
	if l.ID == "" {
		return errors.New("lane id is required")
	}
	if d.laneIndex(l.ID) >= 0 {
		return fmt.Errorf("lane %q: %w", l.ID, ErrDuplicateID)
	}
	d.Lanes = append(d.Lanes, l)
	d.changed()
	return nil
}

// RemoveLane deletes a lane together with its boxes.
func (d *Diagram) RemoveLane(id string) error {
	i := d.laneIndex(id)
	if i < 0 {
		return fmt.Errorf("lane %q: %w", id, ErrUnknownLane)
	}
	d.Lanes = append(d.Lanes[:i], d.Lanes[i+1:]...)

	kept := d.Boxes[:0]
	for _, b := range d.Boxes {
		if b.LaneID != id {
			kept = append(kept, b)
		}
	}
	d.Boxes = kept
	d.changed()
	return nil
}

// AddBox appends a box and returns its id. An empty id is generated.
func (d *Diagram) AddBox(b Box) (string, error) {
	if d.laneIndex(b.LaneID) < 0 {
		return "", fmt.Errorf("lane %q: %w", b.LaneID, ErrUnknownLane)
	}
	if b.ID == "" {
		b.ID = d.generateID()
	}
	if d.boxIndex(b.ID) >= 0 {
		return "", fmt.Errorf("box %q: %w", b.ID, ErrDuplicateID)
	}
	d.Boxes = append(d.Boxes, b)
	d.changed()
	return b.ID, nil
}

// MoveBox changes a box's start and, when laneID is not empty, its lane.
func (d *Diagram) MoveBox(id string, start float64, laneID string) error {
	i := d.boxIndex(id)
	if i < 0 {
		return fmt.Errorf("box %q: %w", id, ErrUnknownBox)
	}
	if laneID != "" {
		if d.laneIndex(laneID) < 0 {
			return fmt.Errorf("lane %q: %w", laneID, ErrUnknownLane)
		}
		d.Boxes[i].LaneID = laneID
	}
	d.Boxes[i].Start = start
	d.changed()
	return nil
}

// ResizeBox sets a box's start and duration.
func (d *Diagram) ResizeBox(id string, start, duration float64) error {
	i := d.boxIndex(id)
	if i < 0 {
		return fmt.Errorf("box %q: %w", id, ErrUnknownBox)
	}
	d.Boxes[i].Start = start
	d.Boxes[i].Duration = duration
	d.changed()
	return nil
}

// RemoveBox deletes a box.
func (d *Diagram) RemoveBox(id string) error {
	i := d.boxIndex(id)
	if i < 0 {
		return fmt.Errorf("box %q: %w", id, ErrUnknownBox)
	}
	d.Boxes = append(d.Boxes[:i], d.Boxes[i+1:]...)
	d.changed()
	return nil
}

// Intervals implements compress.Source.
func (d *Diagram) Intervals() []compress.Interval {
	out := make([]compress.Interval, len(d.Boxes))
	for i, b := range d.Boxes {
		out[i] = compress.Interval{
			ID:       b.ID,
			LaneID:   b.LaneID,
			Start:    b.Start,
			Duration: b.Duration,
		}
	}
	return out
}

func (d *Diagram) laneIndex(id string) int {
	for i, l := range d.Lanes {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (d *Diagram) boxIndex(id string) int {
	for i, b := range d.Boxes {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (d *Diagram) generateID() string {
	for {
		d.nextID++
		id := "box-" + strconv.Itoa(d.nextID)
		if d.boxIndex(id) < 0 {
			return id
		}
	}
}
