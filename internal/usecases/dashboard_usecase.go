package usecases

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/pkg/logger"
)

// DashboardUsecase composes the main screen from the session and contract reads.
type DashboardUsecase struct {
	sessions SessionSource
	reader   ReadHandle
	gateway  *ContractGateway
	network  entities.Network
}

func NewDashboardUsecase(sessions SessionSource, reader ReadHandle, gateway *ContractGateway, network entities.Network) *DashboardUsecase {
	return &DashboardUsecase{
		sessions: sessions,
		reader:   reader,
		gateway:  gateway,
		network:  network,
	}
}

// BuildDashboard picks the view for the current session. Metadata is read
// only for the selected token, once.
func (u *DashboardUsecase) BuildDashboard(ctx context.Context, selected *uint64) (*entities.DashboardView, error) {
	session := u.sessions.Session()
	view := &entities.DashboardView{
		Session: session,
		Tokens:  []entities.TokenEntry{},
	}

	if !session.Connected || session.Address == nil {
		view.State = entities.ViewConnect
		return view, nil
	}
	if !session.IsCorrectNetwork {
		network := u.network
		view.State = entities.ViewNetworkWarning
		view.TargetNetwork = &network
		return view, nil
	}

	view.State = entities.ViewDashboard
	account := *session.Address
	ctx = logger.WithAccount(ctx, account)

	owned := u.gateway.GetOwnedTokens(ctx, u.reader, account)
	view.Tokens = TokenEntries(owned)

	if selected == nil {
		return view, nil
	}
	if !slices.Contains(owned, *selected) {
		return nil, domainerrors.NotFound(fmt.Sprintf("Token #%d is not owned by the connected account", *selected))
	}

	details := u.TokenDetails(ctx, account, *selected)
	view.Selected = &details
	return view, nil
}

// TokenDetails reads metadata and the account's holding for one token. The
// two reads run concurrently; a failed balance read leaves Balance empty.
func (u *DashboardUsecase) TokenDetails(ctx context.Context, account string, tokenID uint64) entities.TokenDetails {
	details := entities.TokenDetails{
		ExplorerURL: u.network.AddressURL(u.gateway.BondAddress()),
	}

	var (
		g       errgroup.Group
		balance *big.Int
	)
	g.Go(func() error {
		details.Metadata = u.gateway.GetTokenMetadata(ctx, u.reader, tokenID)
		return nil
	})
	g.Go(func() error {
		var err error
		balance, err = u.gateway.GetBondBalance(ctx, u.reader, account, tokenID)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Warn(ctx, "Failed to read bond balance", zap.Uint64("token_id", tokenID), zap.Error(err))
		return details
	}
	details.Balance = balance.String()
	return details
}

// OwnedTokens lists the account's tokens as display entries
func (u *DashboardUsecase) OwnedTokens(ctx context.Context, account string) []entities.TokenEntry {
	return TokenEntries(u.gateway.GetOwnedTokens(ctx, u.reader, account))
}

// TokenEntries labels token ids for the list view
func TokenEntries(ids []uint64) []entities.TokenEntry {
	entries := make([]entities.TokenEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, entities.TokenEntry{ID: id, Label: fmt.Sprintf("#%d", id)})
	}
	return entries
}

// StablecoinBalance reads the account's stablecoin balance for display.
func (u *DashboardUsecase) StablecoinBalance(ctx context.Context, account string) (entities.StablecoinAmount, error) {
	balance, err := u.gateway.GetStablecoinBalance(ctx, u.reader, account)
	if err != nil {
		return entities.StablecoinAmount{}, domainerrors.UpstreamFailed("Failed to read USDC balance", err)
	}
	return balance, nil
}
