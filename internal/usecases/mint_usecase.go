package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/infrastructure/locks"
	"tbond.backend/pkg/logger"
	"tbond.backend/pkg/metrics"
)

const (
	StepApproving = "Approving USDC..."
	StepMinting   = "Minting tokens..."

	MsgFaucetHint = "You don't have any USDC. Get some mock USDC from the faucet to continue."
)

// MintSettings holds the product limits of the mint form
type MintSettings struct {
	MaxMintAmount int
	PricePerToken int64
	FaucetURL     string
}

// MintUsecase runs the balance check and the approve-then-mint flow for the
// connected account. Each runs at most once at a time per account.
type MintUsecase struct {
	gateway  *ContractGateway
	sessions SessionSource
	reader   ReadHandle
	signers  SignerSource
	guard    locks.BusyGuard
	settings MintSettings
}

func NewMintUsecase(
	gateway *ContractGateway,
	sessions SessionSource,
	reader ReadHandle,
	signers SignerSource,
	guard locks.BusyGuard,
	settings MintSettings,
) *MintUsecase {
	if guard == nil {
		guard = locks.NewMemoryBusyGuard()
	}
	if settings.MaxMintAmount <= 0 {
		settings.MaxMintAmount = 100
	}
	if settings.PricePerToken <= 0 {
		settings.PricePerToken = 1000
	}
	return &MintUsecase{
		gateway:  gateway,
		sessions: sessions,
		reader:   reader,
		signers:  signers,
		guard:    guard,
		settings: settings,
	}
}

// Quote validates one edit of the amount field and prices it
func (u *MintUsecase) Quote(input entities.MintQuoteInput) entities.MintAmountInput {
	return ParseMintAmountInput(input.Previous, input.Value, u.settings.MaxMintAmount, u.settings.PricePerToken)
}

// CheckBalance reads the connected account's stablecoin balance
func (u *MintUsecase) CheckBalance(ctx context.Context) (*entities.BalanceCheck, error) {
	account, err := connectedAccount(u.sessions.Session())
	if err != nil {
		return nil, err
	}
	ctx = logger.WithAccount(ctx, account)

	// the check button stays disabled while a mint is in flight
	minting, err := u.guard.Held(ctx, "mint:"+account)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if minting {
		return nil, domainerrors.Busy()
	}

	release, err := u.acquire(ctx, "balance:"+account)
	if err != nil {
		return nil, err
	}
	defer release()

	balance, err := u.gateway.GetStablecoinBalance(ctx, u.reader, account)
	if err != nil {
		logger.Error(ctx, "Error checking USDC balance", zap.Error(err))
		return nil, domainerrors.UpstreamFailed("Failed to check USDC balance. Please try again.", err)
	}

	result := &entities.BalanceCheck{
		Balance: balance.Formatted,
		Message: fmt.Sprintf("Your USDC Balance: %s USDC", balance.Formatted),
	}
	if balance.Formatted == "0.0" {
		result.Warning = MsgFaucetHint
		result.FaucetURL = u.settings.FaucetURL
	}
	return result, nil
}

// Mint approves the stablecoin cost and then mints, strictly in that order.
// An empty amount mints one token.
func (u *MintUsecase) Mint(ctx context.Context, input entities.MintInput) (*entities.MintResult, error) {
	session := u.sessions.Session()
	account, err := connectedAccount(session)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithAccount(ctx, account)

	amount, err := parseMintAmount(input.Amount, u.settings.MaxMintAmount)
	if err != nil {
		return nil, err
	}

	release, err := u.acquire(ctx, "mint:"+account)
	if err != nil {
		return nil, err
	}
	defer release()

	signer, err := u.signers.Signer(session)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	steps := make([]string, 0, 2)

	steps = append(steps, StepApproving)
	err = u.gateway.ApproveSpend(ctx, signer, amount)
	metrics.RecordMintStage("approve", err)
	if err != nil {
		logger.Error(ctx, "Error in mint process", zap.String("step", StepApproving), zap.Error(err))
		return nil, err
	}

	steps = append(steps, StepMinting)
	err = u.gateway.Mint(ctx, signer, account, amount)
	metrics.RecordMintStage("mint", err)
	if err != nil {
		logger.Error(ctx, "Error in mint process", zap.String("step", StepMinting), zap.Error(err))
		return nil, err
	}
	metrics.RecordMintDuration(time.Since(started).Seconds())

	return &entities.MintResult{
		Amount:      amount,
		Message:     fmt.Sprintf("Successfully minted %d token(s)!", amount),
		Steps:       steps,
		OwnedTokens: u.gateway.GetOwnedTokens(ctx, u.reader, account),
	}, nil
}

func connectedAccount(session entities.WalletSession) (string, error) {
	if !session.Connected || session.Address == nil {
		return "", domainerrors.NotConnected()
	}
	return *session.Address, nil
}

func (u *MintUsecase) acquire(ctx context.Context, key string) (func(), error) {
	release, err := u.guard.Acquire(ctx, key)
	if errors.Is(err, domainerrors.ErrBusy) {
		return nil, domainerrors.Busy()
	}
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return release, nil
}
