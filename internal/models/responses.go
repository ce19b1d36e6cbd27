package models

import (
	"time"

	"tracker.ridelink.org/internal/clock"
)

// ResponseModel is the envelope wrapped around every JSON API response.
type ResponseModel struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Data        any    `json:"data,omitempty"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

// ResponseCurrentTime returns the envelope timestamp in Unix milliseconds.
func ResponseCurrentTime(c clock.Clock) int64 {
	return c.NowUnixMilli()
}

// NewOKResponse wraps data in a 200 envelope.
func NewOKResponse(data any, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        200,
		CurrentTime: ResponseCurrentTime(c),
		Data:        data,
		Text:        "OK",
		Version:     2,
	}
}

// CurrentTimeData is the payload of the current-time endpoint.
type CurrentTimeData struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
}

// NewCurrentTimeData builds the current-time payload from t.
func NewCurrentTimeData(t time.Time) CurrentTimeData {
	return CurrentTimeData{
		ReadableTime: t.Format(time.RFC3339),
		Time:         t.UnixMilli(),
	}
}
