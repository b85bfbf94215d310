package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/hotel-booking-saga/internal/adapters/postgres"
	"github.com/robertarktes/hotel-booking-saga/internal/domain"
	"github.com/robertarktes/hotel-booking-saga/internal/observability"
)

// Catalog is the read side the query endpoints project from. The saga core
// never goes through here.
type Catalog interface {
	SearchRooms(ctx context.Context, q postgres.SearchQuery) ([]postgres.RoomWithHotel, error)
	GetHotel(ctx context.Context, id int64) (domain.Hotel, []domain.Room, error)
	Locations(ctx context.Context) ([]domain.Hotel, error)
}

// Cache is optional; a nil cache disables response caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Handlers struct {
	catalog Catalog
	cache   Cache
	logger  observability.Logger
}

func NewHandlers(catalog Catalog, cache Cache, logger observability.Logger) *Handlers {
	return &Handlers{catalog: catalog, cache: cache, logger: logger}
}

const dateLayout = "2006-01-02"

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (d dateRange) parse() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, d.Start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "parse start date")
	}
	end, err := time.Parse(dateLayout, d.End)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "parse end date")
	}
	return start, end, nil
}

type roomResponse struct {
	RoomID string  `json:"room_id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

type hotelResponse struct {
	HotelID string         `json:"hotel_id"`
	Name    string         `json:"name"`
	City    string         `json:"city"`
	Country string         `json:"country"`
	Rooms   []roomResponse `json:"rooms"`
}

// SearchHotels lists hotels with at least one matching room still free for
// the requested range.
func (h *Handlers) SearchHotels(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dates        dateRange      `json:"dates"`
		Cities       []string       `json:"cities"`
		Participants map[string]int `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	from, to, err := req.Dates.parse()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.catalog.SearchRooms(r.Context(), postgres.SearchQuery{
		From:           from,
		To:             to,
		Cities:         req.Cities,
		Adults:         req.Participants["4"],
		Children:       req.Participants["3"],
		TenYearOlds:    req.Participants["2"],
		LesserChildren: req.Participants["1"],
	})
	if err != nil {
		h.logger.WithError(err).Error("search rooms")
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	byHotel := make(map[int64]*hotelResponse)
	var order []int64
	for _, row := range rows {
		hr, ok := byHotel[row.Hotel.ID]
		if !ok {
			hr = &hotelResponse{
				HotelID: strconv.FormatInt(row.Hotel.ID, 10),
				Name:    row.Hotel.Name,
				City:    row.Hotel.City,
				Country: row.Hotel.Country,
			}
			byHotel[row.Hotel.ID] = hr
			order = append(order, row.Hotel.ID)
		}
		hr.Rooms = append(hr.Rooms, roomResponse{
			RoomID: strconv.FormatInt(row.Room.ID, 10),
			Name:   row.Room.Name,
			Price:  row.Room.Price,
		})
	}

	hotels := make([]hotelResponse, 0, len(order))
	for _, id := range order {
		hotels = append(hotels, *byHotel[id])
	}
	writeJSON(w, http.StatusOK, hotels)
}

// GetHotel returns one hotel and its room types.
func (h *Handlers) GetHotel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HotelID string `json:"hotel_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(req.HotelID, 10, 64)
	if err != nil {
		http.Error(w, "invalid hotel_id", http.StatusBadRequest)
		return
	}

	hotel, rooms, err := h.catalog.GetHotel(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "hotel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("get hotel")
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	resp := hotelResponse{
		HotelID: strconv.FormatInt(hotel.ID, 10),
		Name:    hotel.Name,
		City:    hotel.City,
		Country: hotel.Country,
	}
	for _, room := range rooms {
		resp.Rooms = append(resp.Rooms, roomResponse{
			RoomID: strconv.FormatInt(room.ID, 10),
			Name:   room.Name,
			Price:  room.Price,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type travelLocation struct {
	ID        string           `json:"id"`
	Label     string           `json:"label"`
	Locations []travelLocation `json:"locations,omitempty"`
}

// Locations returns the country to cities tree, cached for a minute.
func (h *Handlers) Locations(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), "locations"); err == nil && cached != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	hotels, err := h.catalog.Locations(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("locations")
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	byCountry := make(map[string][]travelLocation)
	var countries []string
	for _, hotel := range hotels {
		if _, ok := byCountry[hotel.Country]; !ok {
			countries = append(countries, hotel.Country)
		}
		byCountry[hotel.Country] = append(byCountry[hotel.Country], travelLocation{ID: hotel.City, Label: hotel.City})
	}

	tree := make([]travelLocation, 0, len(countries))
	for _, country := range countries {
		tree = append(tree, travelLocation{
			ID:        country,
			Label:     country,
			Locations: byCountry[country],
		})
	}

	data, _ := json.Marshal(tree)
	if h.cache != nil {
		h.cache.Set(r.Context(), "locations", data, time.Minute)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
