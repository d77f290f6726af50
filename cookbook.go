// Package cookbook provides a recipe service that imports recipes from web
// pages using AI extraction, stores them per user, and organizes them into
// categories.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package cookbook
