package shipping

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/quotedesk/quotedesk-backend/internal/quotes"
	"github.com/quotedesk/quotedesk-backend/pkg/config"
	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
	"github.com/quotedesk/quotedesk-backend/pkg/shippo"
)

type fakeLabels struct {
	createShipment func(ctx context.Context, params shippo.ShipmentCreateParams) (*shippo.Shipment, error)
	purchaseLabel  func(ctx context.Context, rateID string) (*shippo.Transaction, error)

	purchasedRateIDs []string
}

func (f *fakeLabels) CreateShipment(ctx context.Context, params shippo.ShipmentCreateParams) (*shippo.Shipment, error) {
	return f.createShipment(ctx, params)
}

func (f *fakeLabels) PurchaseLabel(ctx context.Context, rateID string) (*shippo.Transaction, error) {
	f.purchasedRateIDs = append(f.purchasedRateIDs, rateID)
	return f.purchaseLabel(ctx, rateID)
}

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Quote{}, &models.OutboxTask{}, &models.OutboxDLQ{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	t.Cleanup(func() {
		conn.Exec("DELETE FROM quotes")
		conn.Exec("DELETE FROM outbox_tasks")
	})
	return conn
}

func testShippoConfig() config.ShippoConfig {
	return config.ShippoConfig{
		RatePolicy:       config.RatePolicyCheapest,
		WarehouseName:    "Quote Desk Receiving",
		WarehouseStreet1: "400 Dock St",
		WarehouseCity:    "Portland",
		WarehouseState:   "OR",
		WarehouseZip:     "97201",
		WarehouseCountry: "US",
		ParcelLengthIn:   "60",
		ParcelWidthIn:    "40",
		ParcelHeightIn:   "35",
		ParcelWeightLb:   "45",
	}
}

func newTestService(t *testing.T, conn *gorm.DB, labels *fakeLabels) *Service {
	t.Helper()
	repo := quotes.NewRepository(conn)
	tasks := outbox.NewService(outbox.NewRepository(conn), nil)
	return NewService(gormTx{db: conn}, repo, tasks, labels, testShippoConfig(), nil)
}

func seedQuote(t *testing.T, conn *gorm.DB, productID int64, status enums.QuoteStatus, email string) *models.Quote {
	t.Helper()
	quote := &models.Quote{
		Status:        status,
		CustomerID:    501,
		CustomerEmail: email,
		CustomerName:  "Pat",
		ProductID:     productID,
		VariantIDs:    models.VariantIDList{1, 2, 3},
	}
	if err := conn.Create(quote).Error; err != nil {
		t.Fatalf("seeding quote: %v", err)
	}
	return quote
}

func addressParams(productID int64) LabelParams {
	return LabelParams{
		CustomerName: "Pat Seller",
		Street1:      "12 Elm St",
		City:         "Austin",
		State:        "TX",
		Zip:          "78701",
		Country:      "US",
		Email:        "pat@example.com",
		ProductID:    productID,
	}
}

func taskKinds(t *testing.T, conn *gorm.DB, quoteID any) map[enums.OutboxTaskKind]int {
	t.Helper()
	var tasks []models.OutboxTask
	if err := conn.Where("quote_id = ?", quoteID).Find(&tasks).Error; err != nil {
		t.Fatalf("loading tasks: %v", err)
	}
	kinds := map[enums.OutboxTaskKind]int{}
	for _, task := range tasks {
		kinds[task.Kind]++
	}
	return kinds
}

func TestPurchaseLabelSuccess(t *testing.T) {
	conn := openTestDB(t)
	var captured shippo.ShipmentCreateParams
	labels := &fakeLabels{
		createShipment: func(ctx context.Context, params shippo.ShipmentCreateParams) (*shippo.Shipment, error) {
			captured = params
			return &shippo.Shipment{
				ObjectID: "shp_1",
				Status:   "SUCCESS",
				Rates: []shippo.Rate{
					{ObjectID: "r1", Amount: "240.00", Provider: "FedEx", EstimatedDays: 1},
					{ObjectID: "r2", Amount: "129.95", Provider: "UPS", EstimatedDays: 5},
				},
			}, nil
		},
		purchaseLabel: func(ctx context.Context, rateID string) (*shippo.Transaction, error) {
			return &shippo.Transaction{
				ObjectID:       "txn_1",
				Status:         shippo.TransactionSuccess,
				LabelURL:       "https://deliver.goshippo.com/label.pdf",
				TrackingNumber: "1Z999",
			}, nil
		},
	}
	svc := newTestService(t, conn, labels)
	quote := seedQuote(t, conn, 9001, enums.QuoteStatusApproved, "pat@example.com")

	result, err := svc.PurchaseLabel(context.Background(), addressParams(9001))
	if err != nil {
		t.Fatalf("PurchaseLabel: %v", err)
	}
	if !result.Purchased {
		t.Fatal("result not purchased")
	}
	if result.LabelURL == "" || result.TrackingNumber != "1Z999" {
		t.Errorf("result = %+v", result)
	}

	if captured.AddressTo.Zip != "97201" {
		t.Errorf("address_to zip = %q, want warehouse zip", captured.AddressTo.Zip)
	}
	if captured.AddressFrom.Street1 != "12 Elm St" {
		t.Errorf("address_from street1 = %q", captured.AddressFrom.Street1)
	}
	if len(captured.Parcels) != 1 || captured.Parcels[0].Length != "60" {
		t.Errorf("parcels = %+v", captured.Parcels)
	}

	if len(labels.purchasedRateIDs) != 1 || labels.purchasedRateIDs[0] != "r2" {
		t.Errorf("purchased rates = %v, want the cheapest (r2)", labels.purchasedRateIDs)
	}

	var after models.Quote
	if err := conn.First(&after, "id = ?", quote.ID).Error; err != nil {
		t.Fatalf("reloading quote: %v", err)
	}
	if after.Status != enums.QuoteStatusLabeled {
		t.Errorf("status = %s, want labeled", after.Status)
	}
	if after.LabelURL == "" || after.TrackingNumber != "1Z999" {
		t.Errorf("label fields not persisted: %+v", after)
	}

	kinds := taskKinds(t, conn, quote.ID)
	if kinds[enums.TaskEmailLabelReady] != 1 {
		t.Errorf("label ready emails queued = %d, want 1", kinds[enums.TaskEmailLabelReady])
	}
	if kinds[enums.TaskProductTagLabelStatus] != 1 {
		t.Errorf("product tag tasks queued = %d, want 1", kinds[enums.TaskProductTagLabelStatus])
	}
}

func TestPurchaseLabelDeclinedQueuesAddressProblem(t *testing.T) {
	conn := openTestDB(t)
	labels := &fakeLabels{
		createShipment: func(ctx context.Context, params shippo.ShipmentCreateParams) (*shippo.Shipment, error) {
			return &shippo.Shipment{
				ObjectID: "shp_2",
				Rates:    []shippo.Rate{{ObjectID: "r1", Amount: "100.00", Provider: "UPS", EstimatedDays: 3}},
			}, nil
		},
		purchaseLabel: func(ctx context.Context, rateID string) (*shippo.Transaction, error) {
			return &shippo.Transaction{
				Status:   "ERROR",
				Messages: []shippo.Message{{Text: "address not found"}},
			}, nil
		},
	}
	svc := newTestService(t, conn, labels)
	quote := seedQuote(t, conn, 9002, enums.QuoteStatusApproved, "pat@example.com")

	result, err := svc.PurchaseLabel(context.Background(), addressParams(9002))
	if err != nil {
		t.Fatalf("PurchaseLabel: %v", err)
	}
	if result.Purchased {
		t.Fatal("result reports purchased for a declined transaction")
	}
	if result.LabelURL != "" {
		t.Error("declined result must not carry a label url")
	}

	kinds := taskKinds(t, conn, quote.ID)
	if kinds[enums.TaskEmailAddressProblem] != 1 {
		t.Errorf("address problem emails queued = %d, want 1", kinds[enums.TaskEmailAddressProblem])
	}
	if kinds[enums.TaskProductTagLabelStatus] != 0 {
		t.Error("product must stay untagged when the purchase fails")
	}

	var after models.Quote
	if err := conn.First(&after, "id = ?", quote.ID).Error; err != nil {
		t.Fatalf("reloading quote: %v", err)
	}
	if after.Status != enums.QuoteStatusApproved {
		t.Errorf("status = %s, want approved retained for retry", after.Status)
	}
}

func TestPurchaseLabelNoRatesQueuesAddressProblem(t *testing.T) {
	conn := openTestDB(t)
	labels := &fakeLabels{
		createShipment: func(ctx context.Context, params shippo.ShipmentCreateParams) (*shippo.Shipment, error) {
			return &shippo.Shipment{ObjectID: "shp_3", Messages: []shippo.Message{{Text: "invalid zip"}}}, nil
		},
	}
	svc := newTestService(t, conn, labels)
	quote := seedQuote(t, conn, 9003, enums.QuoteStatusApproved, "pat@example.com")

	result, err := svc.PurchaseLabel(context.Background(), addressParams(9003))
	if err != nil {
		t.Fatalf("PurchaseLabel: %v", err)
	}
	if result.Purchased {
		t.Fatal("result reports purchased with no rates")
	}
	if len(labels.purchasedRateIDs) != 0 {
		t.Error("no purchase should be attempted with no rates")
	}
	if taskKinds(t, conn, quote.ID)[enums.TaskEmailAddressProblem] != 1 {
		t.Error("address problem email not queued")
	}
}

func TestPurchaseLabelGuardsStatus(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn, &fakeLabels{})
	seedQuote(t, conn, 9004, enums.QuoteStatusSubmitted, "pat@example.com")

	_, err := svc.PurchaseLabel(context.Background(), addressParams(9004))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("err = %v, want state conflict", err)
	}
}

func TestPurchaseLabelUnknownProduct(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn, &fakeLabels{})

	_, err := svc.PurchaseLabel(context.Background(), addressParams(999999))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}
