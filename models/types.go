package models

import "time"

// SampleTimings records where the time for one dataset access went.
type SampleTimings struct {
	SampleID   string
	Index      int
	ImageLoad  time.Duration
	Annotation time.Duration
	Convert    time.Duration
	Transform  time.Duration
	Augment    time.Duration
	Total      time.Duration
}
