package class_test

import (
	"errors"
	"testing"
	"time"

	"arff/internal/domain/class"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func newClass() class.Class {
	return class.Class{
		ID: "c1", CourseID: "course-1", Site: "SBGR", Instructor: "Lt. Souza",
		StartDate: day(3, 3), EndDate: day(3, 7), Capacity: 12, Status: class.StatusScheduled,
	}
}

func TestClassValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *class.Class)
		wantErr error
	}{
		{name: "valid", mutate: func(c *class.Class) {}},
		{name: "no course", mutate: func(c *class.Class) { c.CourseID = "" }, wantErr: class.ErrNoCourse},
		{name: "no site", mutate: func(c *class.Class) { c.Site = "" }, wantErr: class.ErrNoSite},
		{name: "reversed", mutate: func(c *class.Class) { c.EndDate = day(3, 1) }, wantErr: class.ErrDatesReversed},
		{name: "zero capacity", mutate: func(c *class.Class) { c.Capacity = 0 }, wantErr: class.ErrCapacity},
		{name: "over capacity", mutate: func(c *class.Class) { c.Capacity = 61 }, wantErr: class.ErrCapacity},
		{name: "bad status", mutate: func(c *class.Class) { c.Status = "done" }, wantErr: class.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClass()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClassDaysAndCovers(t *testing.T) {
	c := newClass()
	if got := len(c.Days()); got != 5 {
		t.Errorf("Days() = %d, want 5", got)
	}
	if !c.Covers(day(3, 7)) || c.Covers(day(3, 8)) || c.Covers(day(3, 2)) {
		t.Error("Covers should be inclusive of start and end only")
	}
}

func TestClassComplete(t *testing.T) {
	c := newClass()
	if err := c.Complete(day(3, 6)); !errors.Is(err, class.ErrCompleteTooEarly) {
		t.Errorf("Complete before end = %v", err)
	}
	if err := c.Complete(day(3, 7)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Status != class.StatusCompleted {
		t.Errorf("Status = %s", c.Status)
	}
	if err := c.Cancel(); !errors.Is(err, class.ErrAlreadyClosed) {
		t.Errorf("Cancel after complete = %v", err)
	}
}
