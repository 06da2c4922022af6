package transport

// TaskRequest is the payload of task create/edit calls. Frequency-specific
// fields are only honored for their own frequency type.
type TaskRequest struct {
	Title         string `json:"title"`
	Notes         string `json:"notes"`
	FrequencyType string `json:"frequency_type"`
	WeekdayMask   int    `json:"weekday_mask"`
	Monthday      int    `json:"monthday"`
	IntervalDays  int    `json:"interval_days"`
}

// ToggleRequest flips the completion fact for a day; today when omitted.
type ToggleRequest struct {
	Day *int64 `json:"day"`
}
