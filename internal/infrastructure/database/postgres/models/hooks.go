package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *UserModel) BeforeCreate(*gorm.DB) error {
	newID(&m.ID)
	return nil
}

func (m *TourModel) BeforeCreate(*gorm.DB) error {
	newID(&m.ID)
	return nil
}

func (m *ReviewModel) BeforeCreate(*gorm.DB) error {
	newID(&m.ID)
	return nil
}

func (m *BookingModel) BeforeCreate(*gorm.DB) error {
	newID(&m.ID)
	return nil
}
