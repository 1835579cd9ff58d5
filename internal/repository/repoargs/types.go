package repoargs

type RepositoryName string

const (
	UserRepoName         RepositoryName = "user"
	WalletRepoName       RepositoryName = "wallet"
	WalletTransRepoName  RepositoryName = "wallet_transaction"
	WithdrawalRepoName   RepositoryName = "withdrawal_request"
	OrderRepoName        RepositoryName = "order"
	SpecialOrderRepoName RepositoryName = "special_order_request"
	ProductRepoName      RepositoryName = "product"
	ShopRepoName         RepositoryName = "shop"
)
