package main

const (
	MsgEmptySubset = "The selected subset contains no images. Check the subset name against the weather and light conditions present in info.json and the annotations."

	MsgNoTargets = "The first batch contains no ground-truth objects."

	MsgSampleDumped = "Saved the first sample to %s"
)
