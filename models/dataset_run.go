package models

import "time"

// DatasetRun records one synthetic dataset generated through the API.
type DatasetRun struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Seed        uint64    `gorm:"column:seed" json:"seed"`
	Size        int       `gorm:"column:size" json:"size"`
	Workers     int       `gorm:"column:workers" json:"workers"`
	SuccessRate float64   `gorm:"column:success_rate" json:"success_rate"`
	RequestedBy *uint     `gorm:"column:requested_by" json:"requested_by"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (DatasetRun) TableName() string { return "dataset_runs" }
