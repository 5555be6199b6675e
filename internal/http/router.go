package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(handler.log))
	r.Use(Recoverer(handler.log))
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Post("/products", handler.CreateProduct)
		r.Get("/products/{name}", handler.GetProduct)
		r.Put("/products/{name}", handler.UpdateProduct)
		r.Delete("/products/{name}", handler.DeleteProduct)
		r.Put("/products/{name}/stock", handler.SetStock)
		r.Post("/products/{name}/adjust", handler.AdjustStock)

		r.Get("/inventory/summary", handler.InventorySummary)
		r.Get("/inventory/low-stock", handler.LowStock)
		r.Post("/inventory/import-excel", handler.ImportInventoryExcel)
		r.Get("/inventory/export", handler.ExportInventory)

		r.Get("/bills", handler.ListBills)
		r.Post("/bills", handler.CreateBill)
		r.Post("/bills/check", handler.CheckBill)
		r.Get("/bills/export", handler.ExportBills)
		r.Get("/bills/counters", handler.Counters)
		r.Get("/bills/{id}", handler.GetBill)
		r.Put("/bills/{id}", handler.EditBill)
		r.Delete("/bills/{id}", handler.DeleteBill)
		r.Get("/bills/{id}/pdf", handler.BillPDF)

		r.Get("/reports/summary", handler.Summary)
		r.Get("/reports/profit", handler.Profit)
		r.Get("/reports/sales", handler.SalesReport)
		r.Get("/reports/sales/export", handler.ExportSalesReport)
		r.Get("/reports/customers", handler.Customers)
		r.Get("/reports/customers/export", handler.ExportCustomers)
		r.Get("/reports/ledger", handler.PartyLedger)
		r.Get("/reports/monthly", handler.MonthlySummary)

		r.Get("/profile", handler.GetProfile)
		r.Put("/profile", handler.SaveProfile)
	})

	return r
}
