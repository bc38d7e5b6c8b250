package model

import (
	"github.com/LeonardoBeccarini/farmassist/internal/model/entities"
	"github.com/LeonardoBeccarini/farmassist/internal/model/messages"
)

// Alias per esporre tipi comuni ai servizi

type (
	MoistureState     = entities.MoistureState
	MoistureStatus    = entities.MoistureStatus
	HistoryEntry      = entities.HistoryEntry
	HistoryStatus     = entities.HistoryStatus
	DailyPoint        = entities.DailyPoint
	SensorReadings    = entities.SensorReadings
	CropRecord        = entities.CropRecord
	Disease           = entities.Disease
	Analysis          = entities.Analysis
	AnalysisRecord    = entities.AnalysisRecord
	MoistureSnapshot  = messages.MoistureSnapshot
	MoistureAggregate = messages.MoistureAggregate
	PumpCommand       = messages.PumpCommand
	ContactMessage    = messages.ContactMessage
)

const (
	PumpOn  = entities.PumpOn
	PumpOff = entities.PumpOff
)
