package models

// Vehicle, Team, and Worker are the shared resources a shift ties
// together. The lifecycle core never mutates their business fields; it
// locks their rows as synchronization anchors when opening a shift.

type Vehicle struct {
	BaseModel
	Plate  string `gorm:"size:16;uniqueIndex" json:"plate"`
	Model  string `gorm:"size:64"             json:"model"`
	Active bool   `gorm:"default:true"        json:"active"`
}

type Team struct {
	BaseModel
	Name   string `gorm:"size:64;uniqueIndex" json:"name"`
	Region string `gorm:"size:64"             json:"region"`
	Active bool   `gorm:"default:true"        json:"active"`
}

type Worker struct {
	BaseModel
	Name         string `gorm:"size:128"            json:"name"`
	Registration string `gorm:"size:32;uniqueIndex" json:"registration"`
	Active       bool   `gorm:"default:true"        json:"active"`
}
