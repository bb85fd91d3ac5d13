package session

import (
	"fmt"

	"lanes2svg/internal/diagram"
)

// AddLane appends a lane.
func (s *Session) AddLane(l diagram.Lane) error {
	return s.Diagram.AddLane(l)
}

// RemoveLane deletes a lane and its boxes.
func (s *Session) RemoveLane(id string) error {
	return s.Diagram.RemoveLane(id)
}

// AddBox appends a box with times in milliseconds and returns its id.
func (s *Session) AddBox(b diagram.Box) (string, error) {
	return s.Diagram.AddBox(b)
}

// RemoveBox deletes a box.
func (s *Session) RemoveBox(id string) error {
	return s.Diagram.RemoveBox(id)
}

// CreateBoxAt adds a box of one granularity unit whose start is the
// snapped time under pixel x.
func (s *Session) CreateBoxAt(laneID, label string, x float64, precise bool) (string, error) {
	start := s.Mapper.SnapCreate(s.Mapper.PixelsToActual(x), precise)
	return s.Diagram.AddBox(diagram.Box{
		LaneID:   laneID,
		Label:    label,
		Start:    start,
		Duration: s.Mapper.Granularity(),
	})
}

// DragBox moves a box so it starts at the snapped time under pixel x. An
// empty laneID keeps the box on its lane.
func (s *Session) DragBox(id string, x float64, laneID string, precise bool) error {
	start := s.Mapper.SnapCreate(s.Mapper.PixelsToActual(x), precise)
	return s.Diagram.MoveBox(id, start, laneID)
}

// ResizeRight moves a box's right edge to the snapped time under pixel x.
func (s *Session) ResizeRight(id string, x float64, precise bool) error {
	b, ok := s.Diagram.Box(id)
	if !ok {
		return fmt.Errorf("box %q: %w", id, diagram.ErrUnknownBox)
	}
	duration := s.Mapper.SnapResizeRight(b.Start, s.Mapper.PixelsToActual(x), precise)
	return s.Diagram.ResizeBox(id, b.Start, duration)
}

// ResizeLeft moves a box's left edge to the snapped time under pixel x
// while its end stays put.
func (s *Session) ResizeLeft(id string, x float64, precise bool) error {
	b, ok := s.Diagram.Box(id)
	if !ok {
		return fmt.Errorf("box %q: %w", id, diagram.ErrUnknownBox)
	}
	end := b.End()
	start := s.Mapper.SnapResizeLeft(s.Mapper.PixelsToActual(x), end, precise)
	return s.Diagram.ResizeBox(id, start, end-start)
}
