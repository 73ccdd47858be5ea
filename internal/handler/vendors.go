package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/service"
	"github.com/shopspring/decimal"
)

// VendorServicer defines the vendor and menu operations.
// Satisfied by *service.AdminService.
type VendorServicer interface {
	ListVendors() []database.Vendor
	GetVendor(id uuid.UUID) (database.Vendor, error)
	CreateVendor(ctx context.Context, in service.VendorInput) (database.Vendor, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, in service.VendorInput) (database.Vendor, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error

	ListMenu(vendorID uuid.UUID) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, vendorID uuid.UUID, in service.MenuItemInput) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uuid.UUID, in service.MenuItemInput) (database.MenuItem, error)
	SetMenuItemActive(ctx context.Context, id uuid.UUID, active bool) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
}

// VendorHandler handles vendor and menu item endpoints.
type VendorHandler struct {
	svc VendorServicer
}

func NewVendorHandler(svc VendorServicer) *VendorHandler {
	return &VendorHandler{svc: svc}
}

// RegisterRoutes registers the read-only vendor list for signed-in users.
func (h *VendorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/vendors", h.List)
	r.Get("/vendors/{id}", h.Get)
}

// RegisterAdminRoutes registers vendor and menu management.
// Expected to be mounted at /admin/vendors.
func (h *VendorHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Get("/{id}/items", h.ListItems)
	r.Post("/{id}/items", h.CreateItem)
	r.Put("/{id}/items/{itemId}", h.UpdateItem)
	r.Patch("/{id}/items/{itemId}/active", h.SetItemActive)
	r.Delete("/{id}/items/{itemId}", h.DeleteItem)
}

// --- Request types ---

type vendorRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description"`
	Banners     []string `json:"banners"`
	SubVendors  []string `json:"sub_vendors"`
}

func (req vendorRequest) input() service.VendorInput {
	return service.VendorInput{Name: req.Name, Description: req.Description, Banners: req.Banners, SubVendors: req.SubVendors}
}

type optionRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type menuItemRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description"`
	Price       string          `json:"price" validate:"required"`
	SubVendor   string          `json:"sub_vendor"`
	Addons      []optionRequest `json:"addons"`
	Variants    []optionRequest `json:"variants"`
	IsActive    *bool           `json:"is_active"`
}

type activeRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// input converts option prices. Rows with a blank name are dropped by the
// service, so their price is not checked here.
func (req menuItemRequest) input() (service.MenuItemInput, error) {
	addons, err := toOptions(req.Addons)
	if err != nil {
		return service.MenuItemInput{}, err
	}
	variants, err := toOptions(req.Variants)
	if err != nil {
		return service.MenuItemInput{}, err
	}
	return service.MenuItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SubVendor:   req.SubVendor,
		Addons:      addons,
		Variants:    variants,
		IsActive:    req.IsActive,
	}, nil
}

func toOptions(in []optionRequest) ([]database.Option, error) {
	out := make([]database.Option, 0, len(in))
	for _, o := range in {
		price := decimal.Zero
		if o.Name != "" && o.Price != "" {
			p, err := decimal.NewFromString(o.Price)
			if err != nil {
				return nil, service.ErrInvalidPrice
			}
			price = p
		}
		out = append(out, database.Option{Name: o.Name, Price: price})
	}
	return out, nil
}

// --- Vendor handlers ---

// List handles GET /vendors.
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toVendorResponses(h.svc.ListVendors()))
}

// Get handles GET /vendors/{id}.
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	v, err := h.svc.GetVendor(id)
	if err != nil {
		writeServiceError(w, "get vendor", err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorResponse(v))
}

// Create handles POST /admin/vendors.
func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req vendorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.svc.CreateVendor(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, "create vendor", err)
		return
	}
	writeJSON(w, http.StatusCreated, toVendorResponse(v))
}

// Update handles PUT /admin/vendors/{id}.
func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req vendorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.svc.UpdateVendor(r.Context(), id, req.input())
	if err != nil {
		writeServiceError(w, "update vendor", err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorResponse(v))
}

// Delete handles DELETE /admin/vendors/{id}. The vendor's menu goes with it.
func (h *VendorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteVendor(r.Context(), id); err != nil {
		writeServiceError(w, "delete vendor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Menu item handlers ---

// ListItems handles GET /admin/vendors/{id}/items.
func (h *VendorHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListMenu(id)
	if err != nil {
		writeServiceError(w, "list menu", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponses(items))
}

// CreateItem handles POST /admin/vendors/{id}/items.
func (h *VendorHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req menuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeServiceError(w, "create menu item", err)
		return
	}
	item, err := h.svc.CreateMenuItem(r.Context(), vendorID, in)
	if err != nil {
		writeServiceError(w, "create menu item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// UpdateItem handles PUT /admin/vendors/{id}/items/{itemId}.
func (h *VendorHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(w, r, "itemId")
	if !ok {
		return
	}
	var req menuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeServiceError(w, "update menu item", err)
		return
	}
	item, err := h.svc.UpdateMenuItem(r.Context(), itemID, in)
	if err != nil {
		writeServiceError(w, "update menu item", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// SetItemActive handles PATCH /admin/vendors/{id}/items/{itemId}/active.
func (h *VendorHandler) SetItemActive(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(w, r, "itemId")
	if !ok {
		return
	}
	var req activeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := h.svc.SetMenuItemActive(r.Context(), itemID, *req.IsActive)
	if err != nil {
		writeServiceError(w, "toggle menu item", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// DeleteItem handles DELETE /admin/vendors/{id}/items/{itemId}.
func (h *VendorHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(w, r, "itemId")
	if !ok {
		return
	}
	if err := h.svc.DeleteMenuItem(r.Context(), itemID); err != nil {
		writeServiceError(w, "delete menu item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
