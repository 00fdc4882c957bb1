package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	gymclassStore "gymdesk/internal/adapters/storage/gymclass"
	planStore "gymdesk/internal/adapters/storage/plan"
	productStore "gymdesk/internal/adapters/storage/product"
	staffStore "gymdesk/internal/adapters/storage/staff"
	gymclassDomain "gymdesk/internal/domain/gymclass"
	planDomain "gymdesk/internal/domain/plan"
	productDomain "gymdesk/internal/domain/product"
	staffDomain "gymdesk/internal/domain/staff"
)

// handlePlans handles GET/POST/PUT/DELETE for /api/plans.
// Reads are open to any operator; writes require admin.
func handlePlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireSession(w, r); !ok {
			return
		}
		if id := r.URL.Query().Get("id"); id != "" {
			p, err := stores.PlanStore.GetByID(ctx, id)
			if err != nil {
				if isNotFound(err) {
					http.Error(w, "plan not found", http.StatusNotFound)
					return
				}
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}
		plans, err := stores.PlanStore.List(ctx, planStore.ListFilter{
			OnlyActive: r.URL.Query().Get("active") == "true",
		})
		if err != nil {
			internalError(w, err)
			return
		}
		if plans == nil {
			plans = []planDomain.Plan{}
		}
		writeJSON(w, http.StatusOK, plans)

	case "POST":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		// Decoding through the domain type tolerates legacy duration
		// spellings (duration, days, ...) in imported payloads.
		p := planDomain.Plan{Active: true}
		if err := strictDecode(r, &p); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		p.ID = generateID()
		if err := p.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.PlanStore.Save(ctx, p); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)

	case "PUT":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		var patch planDomain.Plan
		if err := json.Unmarshal(body, &patch); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if patch.ID == "" {
			http.Error(w, "ID is required", http.StatusBadRequest)
			return
		}
		p, err := stores.PlanStore.GetByID(ctx, patch.ID)
		if err != nil {
			if isNotFound(err) {
				http.Error(w, "plan not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		// Re-decoding onto the stored row merges only the fields present
		// in the payload, legacy duration spellings included.
		if err := json.Unmarshal(body, &p); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if err := p.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.PlanStore.Save(ctx, p); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case "DELETE":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		// Plans referenced by members are deactivated rather than deleted so
		// historical expirations stay derivable.
		p, err := stores.PlanStore.GetByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				http.Error(w, "plan not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		p.Active = false
		if err := stores.PlanStore.Save(ctx, p); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleClasses handles GET/POST/PUT/DELETE for /api/classes.
func handleClasses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireSession(w, r); !ok {
			return
		}
		if id := r.URL.Query().Get("id"); id != "" {
			c, err := stores.ClassStore.GetByID(ctx, id)
			if err != nil {
				if isNotFound(err) {
					http.Error(w, "class not found", http.StatusNotFound)
					return
				}
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, c)
			return
		}
		classes, err := stores.ClassStore.List(ctx, gymclassStore.ListFilter{
			Weekday:    r.URL.Query().Get("weekday"),
			OnlyActive: r.URL.Query().Get("active") == "true",
		})
		if err != nil {
			internalError(w, err)
			return
		}
		if instructor := r.URL.Query().Get("instructor"); instructor != "" {
			filtered := classes[:0]
			for _, c := range classes {
				if c.Instructor == instructor {
					filtered = append(filtered, c)
				}
			}
			classes = filtered
		}
		if classes == nil {
			classes = []gymclassDomain.Class{}
		}
		writeJSON(w, http.StatusOK, classes)

	case "POST":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			Name       string
			Instructor string
			Weekday    string
			StartTime  string
			EndTime    string
			Capacity   int
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		c := gymclassDomain.Class{
			ID:         generateID(),
			Name:       input.Name,
			Instructor: input.Instructor,
			Weekday:    input.Weekday,
			StartTime:  input.StartTime,
			EndTime:    input.EndTime,
			Capacity:   input.Capacity,
			Active:     true,
		}
		if err := c.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ClassStore.Save(ctx, c); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	case "PUT":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			ID         string
			Name       string
			Instructor string
			Weekday    string
			StartTime  string
			EndTime    string
			Capacity   *int
			Active     *bool
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		c, err := stores.ClassStore.GetByID(ctx, input.ID)
		if err != nil {
			if isNotFound(err) {
				http.Error(w, "class not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		if input.Name != "" {
			c.Name = input.Name
		}
		if input.Instructor != "" {
			c.Instructor = input.Instructor
		}
		if input.Weekday != "" {
			c.Weekday = input.Weekday
		}
		if input.StartTime != "" {
			c.StartTime = input.StartTime
		}
		if input.EndTime != "" {
			c.EndTime = input.EndTime
		}
		if input.Capacity != nil {
			c.Capacity = *input.Capacity
		}
		if input.Active != nil {
			c.Active = *input.Active
		}
		if err := c.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ClassStore.Save(ctx, c); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case "DELETE":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := stores.ClassStore.Delete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleProducts handles GET/POST/PUT/DELETE for /api/products.
func handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireSession(w, r); !ok {
			return
		}
		products, err := stores.ProductStore.List(ctx, productStore.ListFilter{
			Category:     r.URL.Query().Get("category"),
			LowStockOnly: r.URL.Query().Get("low_stock") == "true",
		})
		if err != nil {
			internalError(w, err)
			return
		}
		if products == nil {
			products = []productDomain.Product{}
		}
		writeJSON(w, http.StatusOK, products)

	case "POST":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			Name     string
			Category string
			Stock    int
			Price    float64
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		p := productDomain.Product{
			ID:       generateID(),
			Name:     input.Name,
			Category: input.Category,
			Stock:    input.Stock,
			Price:    input.Price,
		}
		if err := p.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ProductStore.Save(ctx, p); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)

	case "PUT":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			ID       string
			Name     string
			Category string
			Stock    *int
			Price    *float64
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		p, err := stores.ProductStore.GetByID(ctx, input.ID)
		if err != nil {
			if isNotFound(err) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		if input.Name != "" {
			p.Name = input.Name
		}
		if input.Category != "" {
			p.Category = input.Category
		}
		if input.Stock != nil {
			p.Stock = *input.Stock
		}
		if input.Price != nil {
			p.Price = *input.Price
		}
		if err := p.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ProductStore.Save(ctx, p); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case "DELETE":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := stores.ProductStore.Delete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleProductStock handles POST /api/products/stock with {ID, Delta}.
// Delta is negative for a sale; the adjustment never drives stock below zero.
func handleProductStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireDesk(w, r); !ok {
		return
	}

	var input struct {
		ID    string
		Delta int
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.ID == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}
	if input.Delta == 0 {
		http.Error(w, "Delta must be non-zero", http.StatusBadRequest)
		return
	}

	if err := stores.ProductStore.AdjustStock(r.Context(), input.ID, input.Delta); err != nil {
		if isNotFound(err) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	p, err := stores.ProductStore.GetByID(r.Context(), input.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ID": p.ID, "Stock": p.Stock, "LowStock": p.IsLowStock()})
}

// handleStaff handles GET/POST/PUT/DELETE for /api/staff.
func handleStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		if _, ok := requireSession(w, r); !ok {
			return
		}
		staff, err := stores.StaffStore.List(ctx, staffStore.ListFilter{
			Role: r.URL.Query().Get("role"),
		})
		if err != nil {
			internalError(w, err)
			return
		}
		if staff == nil {
			staff = []staffDomain.StaffMember{}
		}
		writeJSON(w, http.StatusOK, staff)

	case "POST":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			Name     string
			Role     string
			Email    string
			Phone    string
			Schedule string
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		s := staffDomain.StaffMember{
			ID:       generateID(),
			Name:     input.Name,
			Role:     input.Role,
			Email:    input.Email,
			Phone:    input.Phone,
			Schedule: input.Schedule,
		}
		if err := s.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.StaffStore.Save(ctx, s); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s)

	case "PUT":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var input struct {
			ID       string
			Name     string
			Role     string
			Email    string
			Phone    string
			Schedule string
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		s, err := stores.StaffStore.GetByID(ctx, input.ID)
		if err != nil {
			if isNotFound(err) {
				http.Error(w, "staff member not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		if input.Name != "" {
			s.Name = input.Name
		}
		if input.Role != "" {
			s.Role = input.Role
		}
		if input.Email != "" {
			s.Email = input.Email
		}
		if input.Phone != "" {
			s.Phone = input.Phone
		}
		if input.Schedule != "" {
			s.Schedule = input.Schedule
		}
		if err := s.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.StaffStore.Save(ctx, s); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)

	case "DELETE":
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := stores.StaffStore.Delete(ctx, id); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
