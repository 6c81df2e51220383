// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package models

// Station is a metro station.
type Station struct {
	ID         int64    `json:"id" validate:"gt=0"`
	Code       string   `json:"code" validate:"required"`
	Name       string   `json:"name" validate:"required"`
	NameEn     string   `json:"nameEn,omitempty"`
	Address    string   `json:"address,omitempty"`
	Latitude   float64  `json:"latitude" validate:"latitude"`
	Longitude  float64  `json:"longitude" validate:"longitude"`
	IsActive   bool     `json:"isActive"`
	Facilities []string `json:"facilities,omitempty"`
}

// StationInput creates or updates a station.
type StationInput struct {
	Code       string   `json:"code" validate:"required,max=20"`
	Name       string   `json:"name" validate:"required,max=100"`
	NameEn     string   `json:"nameEn,omitempty" validate:"omitempty,max=100"`
	Address    string   `json:"address,omitempty"`
	Latitude   float64  `json:"latitude" validate:"latitude"`
	Longitude  float64  `json:"longitude" validate:"longitude"`
	IsActive   *bool    `json:"isActive,omitempty"`
	Facilities []string `json:"facilities,omitempty"`
}

// BusConnection is a bus line stopping near a station.
type BusConnection struct {
	ID             int64  `json:"id" validate:"gt=0"`
	StationID      int64  `json:"stationId" validate:"gt=0"`
	BusNumber      string `json:"busNumber" validate:"required"`
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	DistanceMeters int    `json:"distanceMeters" validate:"gte=0"`
}
