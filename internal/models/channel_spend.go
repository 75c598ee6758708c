// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel identifies where a spend segment was placed.
type Channel string

const (
	ChannelMeta          Channel = "Meta"
	ChannelGoogle        Channel = "Google"
	ChannelTikTok        Channel = "TikTok"
	ChannelX             Channel = "X"
	ChannelLinkedIn      Channel = "LinkedIn"
	ChannelEmail         Channel = "Email"
	ChannelOrganicSocial Channel = "Organic Social"
	ChannelOther         Channel = "Other"
)

// Channels lists the selectable spend channels in form display order.
var Channels = []Channel{
	ChannelMeta,
	ChannelGoogle,
	ChannelTikTok,
	ChannelX,
	ChannelLinkedIn,
	ChannelEmail,
	ChannelOrganicSocial,
	ChannelOther,
}

// ChannelSpend is an ordered spend line item owned by a case study. Dates is
// a free-text label ("Jan-Mar 2025"), not a structured range.
type ChannelSpend struct {
	ID            uuid.UUID           `json:"id"`
	CaseStudyID   uuid.UUID           `json:"case_study_id"`
	Position      int                 `json:"position"`
	Channel       Channel             `json:"channel"`
	SpendCurrency Currency            `json:"spend_currency"`
	SpendAmount   decimal.NullDecimal `json:"spend_amount"`
	Dates         string              `json:"dates"`
	Notes         string              `json:"notes"`
	CreatedAt     time.Time           `json:"created_at"`
}
