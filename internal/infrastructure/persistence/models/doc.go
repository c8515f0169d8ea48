// Package models contains the GORM persistence models for the booking tables.
// Domain types stay free of ORM tags; each model converts to and from its
// aggregate with ToDomain and FromDomain.
//
// The installment schedule and the document list are stored as JSONB columns
// on the bookings row so a booking is always read and written as one unit.
package models
