package ics

import (
	"io"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"evcal/internal/model"
)

const productID = "-//evcal//evcal//EN"

// Encode writes events as a PUBLISH calendar. Times are written in UTC.
func Encode(w io.Writer, events []model.Event) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	stamp := time.Now().UTC()
	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(ev.End.UTC())
		ve.SetSummary(ev.Title)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Priority != "" {
			ve.SetProperty(PropertyPriority, ev.Priority)
			if n := numericPriority(ev.Priority); n > 0 {
				ve.SetProperty(ical.ComponentPropertyPriority, strconv.Itoa(n))
			}
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}
