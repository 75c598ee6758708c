// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Metric is an ordered result line item owned by a case study. Value keeps
// its original units as text ("ROAS 3.2", "4.5m users"); it is never parsed
// numerically.
type Metric struct {
	ID          uuid.UUID `json:"id"`
	CaseStudyID uuid.UUID `json:"case_study_id"`
	Position    int       `json:"position"`
	MetricName  string    `json:"metric_name"`
	Value       string    `json:"value"`
	Timeframe   string    `json:"timeframe"`
	Source      string    `json:"source"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
