package models

import "time"

// Student is one submitted record with the classifier's prediction.
type Student struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Age              float64   `gorm:"column:age" json:"age"`
	TypeBac          string    `gorm:"column:type_bac" json:"type_bac"`
	Parcours         string    `gorm:"column:parcours" json:"parcours"`
	MoyenneBac       float64   `gorm:"column:moyenne_bac" json:"moyenne_bac"`
	MoyenneS1        float64   `gorm:"column:moyenne_s1" json:"moyenne_s1"`
	MoyenneS2        float64   `gorm:"column:moyenne_s2" json:"moyenne_s2"`
	MoyenneGenerale  float64   `gorm:"column:moyenne_generale" json:"moyenne_generale_s1_s2"`
	NbModulesEchoues int       `gorm:"column:nb_modules_echoues" json:"nb_modules_echoues"`
	HeuresTravail    float64   `gorm:"column:heures_travail_semaine" json:"heures_travail_semaine"`
	Discipline       float64   `gorm:"column:discipline_note_sur_5" json:"discipline_note_sur_5"`
	Satisfaction     float64   `gorm:"column:satisfaction_parcours_note_sur_5" json:"satisfaction_parcours_note_sur_5"`
	TravailParallele string    `gorm:"column:travail_parallele" json:"travail_parallele"`
	Prediction       int       `gorm:"column:prediction" json:"prediction"`
	ModelVersion     string    `gorm:"column:model_version" json:"model_version"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Student) TableName() string { return "etudiants" }
