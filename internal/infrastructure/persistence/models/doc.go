// Package models contains the GORM persistence models of the billing service.
//
// Each model maps one table and converts to and from its domain type with
// ToDomain and FromDomain. Parent-child links declare ON DELETE CASCADE so
// removing a client removes its contracts, meters, readings, invoices,
// payments, tariff assignments and notifications.
package models
