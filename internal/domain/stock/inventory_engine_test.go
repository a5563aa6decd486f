package stock

import (
	"context"
	"fmt"
	"testing"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReceiptRepository implements ReceiptRepository for engine tests
type stubReceiptRepository struct {
	receipts      map[uuid.UUID]*ReceiptTransaction
	returnCounter int
}

func newStubReceiptRepository() *stubReceiptRepository {
	return &stubReceiptRepository{receipts: make(map[uuid.UUID]*ReceiptTransaction)}
}

func (s *stubReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*ReceiptTransaction, error) {
	if receipt, ok := s.receipts[id]; ok {
		return receipt, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubReceiptRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ReceiptTransaction, error) {
	result := make([]ReceiptTransaction, 0)
	for _, id := range ids {
		if receipt, ok := s.receipts[id]; ok {
			result = append(result, *receipt)
		}
	}
	return result, nil
}

func (s *stubReceiptRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*ReceiptTransaction, error) {
	for _, receipt := range s.receipts {
		if receipt.ReceiptNumber == receiptNumber {
			return receipt, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubReceiptRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ReceiptTransaction, error) {
	result := make([]ReceiptTransaction, 0)
	for _, receipt := range s.receipts {
		if receipt.OrderID == orderID {
			result = append(result, *receipt)
		}
	}
	return result, nil
}

func (s *stubReceiptRepository) FindReturnsByOrigin(ctx context.Context, originReceiptID uuid.UUID) ([]ReceiptTransaction, error) {
	result := make([]ReceiptTransaction, 0)
	for _, receipt := range s.receipts {
		if receipt.OriginReceiptID != nil && *receipt.OriginReceiptID == originReceiptID {
			result = append(result, *receipt)
		}
	}
	return result, nil
}

func (s *stubReceiptRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ReceiptTransaction, error) {
	return nil, nil
}

func (s *stubReceiptRepository) Save(ctx context.Context, receipt *ReceiptTransaction) error {
	s.receipts[receipt.ID] = receipt
	return nil
}

func (s *stubReceiptRepository) SaveWithLock(ctx context.Context, receipt *ReceiptTransaction) error {
	s.receipts[receipt.ID] = receipt
	return nil
}

func (s *stubReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.receipts, id)
	return nil
}

func (s *stubReceiptRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(s.receipts)), nil
}

func (s *stubReceiptRepository) GenerateReceiptNumber(ctx context.Context) (string, error) {
	return fmt.Sprintf("RCV-2026-%05d", len(s.receipts)+1), nil
}

func (s *stubReceiptRepository) GenerateReturnNumber(ctx context.Context) (string, error) {
	s.returnCounter++
	return fmt.Sprintf("RET-2026-%05d", s.returnCounter), nil
}

// stubLevelRepository implements StockLevelRepository for engine tests
type stubLevelRepository struct {
	levels map[string]*StockLevel
}

func newStubLevelRepository() *stubLevelRepository {
	return &stubLevelRepository{levels: make(map[string]*StockLevel)}
}

func levelKey(locationID, productID uuid.UUID) string {
	return locationID.String() + "/" + productID.String()
}

func (s *stubLevelRepository) setOnHand(t *testing.T, locationID, productID uuid.UUID, quantity int64) {
	t.Helper()
	level, err := NewStockLevel(locationID, productID)
	require.NoError(t, err)
	level.OnHand = decimal.NewFromInt(quantity)
	s.levels[levelKey(locationID, productID)] = level
}

func (s *stubLevelRepository) FindByLocationAndProduct(ctx context.Context, locationID, productID uuid.UUID) (*StockLevel, error) {
	if level, ok := s.levels[levelKey(locationID, productID)]; ok {
		return level, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubLevelRepository) GetOrCreate(ctx context.Context, locationID, productID uuid.UUID) (*StockLevel, error) {
	if level, ok := s.levels[levelKey(locationID, productID)]; ok {
		return level, nil
	}
	level, err := NewStockLevel(locationID, productID)
	if err != nil {
		return nil, err
	}
	s.levels[levelKey(locationID, productID)] = level
	return level, nil
}

func (s *stubLevelRepository) FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]StockLevel, error) {
	return nil, nil
}

func (s *stubLevelRepository) AvailableQuantity(ctx context.Context, locationID, productID uuid.UUID) (decimal.Decimal, error) {
	if level, ok := s.levels[levelKey(locationID, productID)]; ok {
		return level.OnHand, nil
	}
	return decimal.Zero, nil
}

func (s *stubLevelRepository) Save(ctx context.Context, level *StockLevel) error {
	s.levels[levelKey(level.LocationID, level.ProductID)] = level
	return nil
}

func (s *stubLevelRepository) SaveWithLock(ctx context.Context, level *StockLevel) error {
	s.levels[levelKey(level.LocationID, level.ProductID)] = level
	return nil
}

// stubLocationRepository implements LocationRepository for engine tests
type stubLocationRepository struct {
	locations map[uuid.UUID]*Location
}

func newStubLocationRepository() *stubLocationRepository {
	return &stubLocationRepository{locations: make(map[uuid.UUID]*Location)}
}

func (s *stubLocationRepository) addLocation(t *testing.T, code string, usage LocationUsage) uuid.UUID {
	t.Helper()
	location, err := NewLocation(code, code, usage)
	require.NoError(t, err)
	s.locations[location.ID] = location
	return location.ID
}

func (s *stubLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	if location, ok := s.locations[id]; ok {
		return location, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubLocationRepository) FindByCode(ctx context.Context, code string) (*Location, error) {
	for _, location := range s.locations {
		if location.Code == code {
			return location, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubLocationRepository) FindByUsage(ctx context.Context, usage LocationUsage) ([]Location, error) {
	result := make([]Location, 0)
	for _, location := range s.locations {
		if location.Usage == usage {
			result = append(result, *location)
		}
	}
	return result, nil
}

func (s *stubLocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]Location, error) {
	return nil, nil
}

func (s *stubLocationRepository) Save(ctx context.Context, location *Location) error {
	s.locations[location.ID] = location
	return nil
}

// engineFixture bundles the engine with its stub repositories
type engineFixture struct {
	engine     *StandardInventoryEngine
	receipts   *stubReceiptRepository
	levels     *stubLevelRepository
	locations  *stubLocationRepository
	supplierID uuid.UUID
	stockID    uuid.UUID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	receipts := newStubReceiptRepository()
	levels := newStubLevelRepository()
	locations := newStubLocationRepository()

	f := &engineFixture{
		engine:    NewStandardInventoryEngine(receipts, levels, locations),
		receipts:  receipts,
		levels:    levels,
		locations: locations,
	}
	f.supplierID = locations.addLocation(t, "SUPPLIER", LocationUsageSupplier)
	f.stockID = locations.addLocation(t, "WH/STOCK", LocationUsageInternal)
	return f
}

func (f *engineFixture) createIncomingReceipt(t *testing.T, quantity int64) (*ReceiptTransaction, uuid.UUID) {
	t.Helper()
	receipt, err := NewReceiptTransaction("RCV-2026-00001", uuid.New(), uuid.New(), f.supplierID, f.stockID)
	require.NoError(t, err)
	productID := uuid.New()
	_, err = receipt.AddMovement(productID, "Steel coil", "STL-01", decimal.NewFromInt(quantity))
	require.NoError(t, err)
	require.NoError(t, receipt.Confirm())
	require.NoError(t, f.receipts.Save(context.Background(), receipt))
	return receipt, productID
}

// ============================================
// StandardInventoryEngine Tests
// ============================================

func TestStandardInventoryEngine_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("incoming receipt increases destination level", func(t *testing.T) {
		f := newEngineFixture(t)
		receipt, productID := f.createIncomingReceipt(t, 10)

		require.NoError(t, f.engine.Complete(ctx, receipt, nil))

		assert.True(t, receipt.IsDone())
		available, err := f.engine.Available(ctx, f.stockID, productID)
		require.NoError(t, err)
		assert.True(t, available.Equal(decimal.NewFromInt(10)))

		// Supplier location balance is not tracked
		_, err = f.levels.FindByLocationAndProduct(ctx, f.supplierID, productID)
		assert.Error(t, err)
	})

	t.Run("outgoing receipt requires stock at tracked source", func(t *testing.T) {
		f := newEngineFixture(t)
		productID := uuid.New()
		f.levels.setOnHand(t, f.stockID, productID, 4)

		receipt, err := NewReceiptTransaction("RET-2026-00001", uuid.New(), uuid.New(), f.stockID, f.supplierID)
		require.NoError(t, err)
		_, err = receipt.AddMovement(productID, "Steel coil", "STL-01", decimal.NewFromInt(10))
		require.NoError(t, err)
		require.NoError(t, receipt.Confirm())

		err = f.engine.Complete(ctx, receipt, nil)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeInsufficientStock, domainErr.Code)
		assert.Equal(t, ReceiptStatusConfirmed, receipt.Status)
	})
}

func TestStandardInventoryEngine_CreateReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and processes the return", func(t *testing.T) {
		f := newEngineFixture(t)
		receipt, productID := f.createIncomingReceipt(t, 10)
		require.NoError(t, f.engine.Complete(ctx, receipt, nil))

		ret, err := f.engine.CreateReturn(ctx, receipt)
		require.NoError(t, err)

		assert.True(t, ret.IsReturn())
		assert.True(t, ret.IsDone())
		assert.Equal(t, receipt.ID, *ret.OriginReceiptID)
		assert.Equal(t, f.stockID, ret.SourceLocationID)
		assert.Equal(t, f.supplierID, ret.DestinationLocationID)

		available, err := f.engine.Available(ctx, f.stockID, productID)
		require.NoError(t, err)
		assert.True(t, available.IsZero())
	})

	t.Run("re-invocation returns existing return", func(t *testing.T) {
		f := newEngineFixture(t)
		receipt, _ := f.createIncomingReceipt(t, 10)
		require.NoError(t, f.engine.Complete(ctx, receipt, nil))

		first, err := f.engine.CreateReturn(ctx, receipt)
		require.NoError(t, err)
		second, err := f.engine.CreateReturn(ctx, receipt)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)

		returns, err := f.receipts.FindReturnsByOrigin(ctx, receipt.ID)
		require.NoError(t, err)
		assert.Len(t, returns, 1)
	})

	t.Run("rejects return when stock was consumed", func(t *testing.T) {
		f := newEngineFixture(t)
		receipt, productID := f.createIncomingReceipt(t, 10)
		require.NoError(t, f.engine.Complete(ctx, receipt, nil))

		// Part of the received goods left the stock location in the meantime
		level, err := f.levels.FindByLocationAndProduct(ctx, f.stockID, productID)
		require.NoError(t, err)
		require.NoError(t, level.Decrease(decimal.NewFromInt(7)))

		_, err = f.engine.CreateReturn(ctx, receipt)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeInsufficientStockForReturn, domainErr.Code)
	})

	t.Run("rejects non-completed origin", func(t *testing.T) {
		f := newEngineFixture(t)
		receipt, _ := f.createIncomingReceipt(t, 10)

		_, err := f.engine.CreateReturn(ctx, receipt)
		assert.Error(t, err)
	})
}

func TestStockLevel(t *testing.T) {
	t.Run("increase and decrease", func(t *testing.T) {
		level, err := NewStockLevel(uuid.New(), uuid.New())
		require.NoError(t, err)

		require.NoError(t, level.Increase(decimal.NewFromInt(10)))
		require.NoError(t, level.Decrease(decimal.NewFromInt(4)))

		assert.True(t, level.OnHand.Equal(decimal.NewFromInt(6)))
		assert.True(t, level.CanFulfill(decimal.NewFromInt(6)))
		assert.False(t, level.CanFulfill(decimal.NewFromInt(7)))
	})

	t.Run("balance cannot go negative", func(t *testing.T) {
		level, err := NewStockLevel(uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, level.Increase(decimal.NewFromInt(3)))

		err = level.Decrease(decimal.NewFromInt(5))

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ErrCodeInsufficientStock, domainErr.Code)
	})
}
