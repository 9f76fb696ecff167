package routes

// Routes package cung cấp tất cả routing functions cho Novel Tag Service
//
// Cấu trúc:
// - api.go: API routes (/v1/*) + health routes
// - routes.go: package doc
//
// Sử dụng:
// routes.SetupAllRoutes(router, novelController, adminController)
