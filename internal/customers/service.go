package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/wallet"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the customer account operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*CustomerDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Get(ctx context.Context, username string) (*Profile, error)
	List(ctx context.Context) ([]CustomerDTO, error)
	Update(ctx context.Context, username string, req UpdateRequest, actorRole enums.CustomerRole) (*CustomerDTO, error)
	Delete(ctx context.Context, username string) error
}

// ServiceParams bundles the dependencies required to build a customer service.
type ServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
	Now            func() time.Time
}

type service struct {
	db          *db.Client
	customers   *Repository
	wallets     wallet.Repository
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
	now         func() time.Time
}

// NewService constructs a customer service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:          params.DB,
		customers:   NewRepository(params.DB.DB()),
		wallets:     wallet.NewRepository(params.DB.DB()),
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
		now:         now,
	}, nil
}

// Register creates the customer and an empty wallet in one transaction. The
// role is always customer regardless of the request.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*CustomerDTO, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if !req.MaritalStatus.IsValid() {
		return nil, invalidMaritalStatus(req.MaritalStatus)
	}
	if req.Age < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age must be non-negative")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	customer := &models.Customer{
		Username:      username,
		Name:          strings.TrimSpace(req.Name),
		PasswordHash:  passwordHash,
		Age:           req.Age,
		Address:       strings.TrimSpace(req.Address),
		Gender:        req.Gender,
		MaritalStatus: req.MaritalStatus,
		Role:          enums.CustomerRoleCustomer,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		customerRepo := NewRepository(tx)
		walletRepo := s.wallets.WithTx(tx)

		if _, err := customerRepo.FindByUsername(ctx, username); err == nil {
			return alreadyExists(username)
		} else if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		if err := customerRepo.Create(ctx, customer); err != nil {
			if db.IsUniqueViolation(err, "") {
				return alreadyExists(username)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
		}
		if _, err := walletRepo.Create(ctx, username); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create wallet")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	customer, err := s.customers.FindByUsername(ctx, username)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	valid, err := security.VerifyPassword(req.Password, customer.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if security.NeedsRehash(customer.PasswordHash, s.passwordCfg) {
		if hash, err := security.HashPassword(req.Password, s.passwordCfg); err == nil {
			if err := s.customers.UpdatePasswordHash(ctx, username, hash); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rehash password")
			}
		}
	}

	now := s.now().UTC()
	if err := s.customers.UpdateLastLogin(ctx, username, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		Username: customer.Username,
		Role:     customer.Role,
		JTI:      uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &LoginResponse{AccessToken: token, TokenType: pkgAuth.TokenType}, nil
}

func (s *service) Get(ctx context.Context, username string) (*Profile, error) {
	customer, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	w, err := s.wallets.FindByCustomerID(ctx, customer.Username)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wallet")
	}
	return &Profile{Customer: FromModel(customer), Wallet: wallet.FromModel(w)}, nil
}

func (s *service) List(ctx context.Context) ([]CustomerDTO, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}
	return FromModels(customers), nil
}

// Update merges the provided fields. Only admins may change a role.
func (s *service) Update(ctx context.Context, username string, req UpdateRequest, actorRole enums.CustomerRole) (*CustomerDTO, error) {
	customer, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		customer.Name = strings.TrimSpace(*req.Name)
		fields["name"] = customer.Name
	}
	if req.Age != nil {
		if *req.Age < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "age must be non-negative")
		}
		customer.Age = *req.Age
		fields["age"] = customer.Age
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
		fields["address"] = customer.Address
	}
	if req.Gender != nil {
		customer.Gender = *req.Gender
		fields["gender"] = customer.Gender
	}
	if req.MaritalStatus != nil {
		if !req.MaritalStatus.IsValid() {
			return nil, invalidMaritalStatus(*req.MaritalStatus)
		}
		customer.MaritalStatus = *req.MaritalStatus
		fields["marital_status"] = customer.MaritalStatus
	}
	if req.Role != nil {
		if actorRole != enums.CustomerRoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can change roles")
		}
		if !req.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
				WithDetails(map[string]any{"role": req.Role.String()})
		}
		customer.Role = *req.Role
		fields["role"] = customer.Role
	}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		fields["password_hash"] = hash
	}

	if len(fields) > 0 {
		found, err := s.customers.Update(ctx, customer.Username, fields)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update customer")
		}
		if !found {
			return nil, notFound(customer.Username)
		}
	}
	return FromModel(customer), nil
}

// Delete removes the wallet and the customer together.
func (s *service) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.wallets.WithTx(tx).Delete(ctx, username); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete wallet")
		}
		deleted, err := NewRepository(tx).Delete(ctx, username)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete customer")
		}
		if !deleted {
			return notFound(username)
		}
		return nil
	})
}

func (s *service) load(ctx context.Context, username string) (*models.Customer, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customer, err := s.customers.FindByUsername(ctx, username)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, notFound(username)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	return customer, nil
}

func invalidMaritalStatus(m enums.MaritalStatus) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid marital status").
		WithDetails(map[string]any{"marital_status": m.String()})
}

func alreadyExists(username string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("customer '%s' already exists", username))
}

func notFound(username string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer '%s' not found", username))
}
