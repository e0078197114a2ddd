package purchase

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/sales"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/upstream"
)

type fakeGood struct {
	price decimal.Decimal
	count int
}

// fakeStore stands in for the inventory and customer services. Each method
// takes the lock once so mutations behave like the conditional UPDATEs.
type fakeStore struct {
	mu       sync.Mutex
	goods    map[int64]*fakeGood
	balances map[string]decimal.Decimal
	ledger   []sales.PurchaseDTO

	afterGetGood func()
	getGoodErr   error
	deductErr    error
	refundErr    error
	recordErr    error

	deductCalls int
	refundCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		goods:    map[int64]*fakeGood{},
		balances: map[string]decimal.Decimal{},
	}
}

func (f *fakeStore) GetGood(_ context.Context, goodID int64) (*upstream.Good, error) {
	f.mu.Lock()
	if f.getGoodErr != nil {
		f.mu.Unlock()
		return nil, f.getGoodErr
	}
	good, ok := f.goods[goodID]
	if !ok {
		f.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("good with id '%d' not found", goodID))
	}
	out := &upstream.Good{ID: goodID, Price: good.price, Count: good.count}
	hook := f.afterGetGood
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (f *fakeStore) DeductStock(_ context.Context, goodID int64) (*upstream.Good, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deductErr != nil {
		return nil, f.deductErr
	}
	good, ok := f.goods[goodID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("good with id '%d' not found", goodID))
	}
	if good.count == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "stock already zero")
	}
	good.count--
	return &upstream.Good{ID: goodID, Price: good.price, Count: good.count}, nil
}

func (f *fakeStore) DeductWallet(_ context.Context, customerID string, amount decimal.Decimal) (*upstream.WalletMutation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deductCalls++
	balance, ok := f.balances[customerID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer '%s' not found", customerID))
	}
	if balance.LessThan(amount) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "amount not enough")
	}
	f.balances[customerID] = balance.Sub(amount)
	return &upstream.WalletMutation{CustomerID: customerID, Amount: amount, NewBalance: f.balances[customerID]}, nil
}

func (f *fakeStore) ChargeWallet(_ context.Context, customerID string, amount decimal.Decimal) (*upstream.WalletMutation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refundCalls++
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	balance, ok := f.balances[customerID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer '%s' not found", customerID))
	}
	f.balances[customerID] = balance.Add(amount)
	return &upstream.WalletMutation{CustomerID: customerID, Amount: amount, NewBalance: f.balances[customerID]}, nil
}

func (f *fakeStore) Record(_ context.Context, goodID int64, customerID string, amount decimal.Decimal) (*sales.PurchaseDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, f.recordErr, "record purchase")
	}
	rec := sales.PurchaseDTO{
		ID:             int64(len(f.ledger) + 1),
		GoodID:         goodID,
		CustomerID:     customerID,
		AmountDeducted: amount,
	}
	f.ledger = append(f.ledger, rec)
	return &rec, nil
}

func (f *fakeStore) balance(customerID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[customerID]
}

func (f *fakeStore) stock(goodID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.goods[goodID].count
}
