package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/zoudousouk/souk-go/internal/account"
	"github.com/zoudousouk/souk-go/internal/api"
	"github.com/zoudousouk/souk-go/internal/cart"
	"github.com/zoudousouk/souk-go/internal/wallet"
	"github.com/zoudousouk/souk-go/pkg/money"
)

const usage = `Usage: soukctl <commande> [options]

Commandes:
  login          Se connecter (--email, --password)
  logout         Se déconnecter
  register       Créer un compte (--nni, --prenom, --nom, --phone, --email, ...)
  become-vendor  Passer en compte vendeur (--name, --description, --type)
  publish        Mettre un produit en vente (--name, --price, --category, ...)
  whoami         Afficher le profil de la session
  products       Lister les produits (--limit, --search, --category)
  cart           Afficher le panier
  cart-add       Ajouter au panier (--product, --name, --price, --qty, --category)
  cart-qty       Modifier une quantité (--product, --qty)
  cart-remove    Retirer du panier (--product)
  cart-clear     Vider le panier
  checkout       Commander le premier article du panier
  balance        Afficher le solde du portefeuille
  transfer       Transférer de l'argent (--to, --amount)
  pay-bill       Payer une facture (--type, --service, --amount, --reference)
  services       Lister les services payables (--type)
  history        Afficher l'historique des transactions
  favorites      Afficher ou basculer les favoris (--toggle)
  searches       Afficher ou vider l'historique de recherche (--clear)
`

func run(ctx context.Context, app *application, args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return runLogin(ctx, app, rest)
	case "logout":
		return app.account.Logout(ctx)
	case "register":
		return runRegister(ctx, app, rest)
	case "become-vendor":
		return runBecomeVendor(ctx, app, rest)
	case "publish":
		return runPublish(ctx, app, rest)
	case "whoami":
		return runWhoami(ctx, app)
	case "products":
		return runProducts(ctx, app, rest)
	case "cart":
		return runCartShow(app)
	case "cart-add":
		return runCartAdd(ctx, app, rest)
	case "cart-qty":
		return runCartQty(ctx, app, rest)
	case "cart-remove":
		return runCartRemove(ctx, app, rest)
	case "cart-clear":
		return app.cart.Clear(ctx)
	case "checkout":
		return runCheckout(ctx, app)
	case "balance":
		return runBalance(ctx, app)
	case "transfer":
		return runTransfer(ctx, app, rest)
	case "pay-bill":
		return runPayBill(ctx, app, rest)
	case "services":
		return runServices(ctx, app, rest)
	case "history":
		return runHistory(ctx, app)
	case "favorites":
		return runFavorites(ctx, app, rest)
	case "searches":
		return runSearches(ctx, app, rest)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("commande inconnue %q\n\n%s", command, usage)
	}
}

func runLogin(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := flags.String("email", "", "adresse email")
	password := flags.String("password", "", "mot de passe")
	if err := flags.Parse(args); err != nil {
		return err
	}

	user, err := app.account.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Connecté en tant que %s (%s)\n", user.Name, user.Role)
	return nil
}

func runRegister(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("register", pflag.ContinueOnError)
	form := account.RegisterForm{}
	flags.StringVar(&form.NNI, "nni", "", "numéro national d'identité (8 chiffres)")
	flags.StringVar(&form.FirstName, "prenom", "", "prénom")
	flags.StringVar(&form.LastName, "nom", "", "nom de famille")
	flags.StringVar(&form.Phone, "phone", "", "numéro de téléphone (9 chiffres)")
	flags.StringVar(&form.Email, "email", "", "adresse email")
	flags.StringVar(&form.Password, "password", "", "mot de passe")
	flags.StringVar(&form.ConfirmPassword, "confirm", "", "confirmation du mot de passe")
	flags.StringVar(&form.Province, "province", "", "province du Tchad")
	flags.StringVar(&form.City, "ville", "", "ville")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := app.account.Register(ctx, form); err != nil {
		return err
	}
	fmt.Println("Compte créé, vous pouvez maintenant vous connecter")
	return nil
}

func runBecomeVendor(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("become-vendor", pflag.ContinueOnError)
	form := account.VendorUpgradeForm{}
	flags.StringVar(&form.BusinessName, "name", "", "nom de l'entreprise")
	flags.StringVar(&form.BusinessDescription, "description", "", "description des activités")
	flags.StringVar(&form.BusinessType, "type", "", "type d'entreprise")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := app.account.UpgradeVendor(ctx, form); err != nil {
		return err
	}
	fmt.Println("Demande vendeur envoyée")
	return nil
}

func runPublish(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("publish", pflag.ContinueOnError)
	form := account.ProductForm{Condition: "neuf", Quantity: 1}
	flags.StringVar(&form.Name, "name", "", "nom du produit")
	flags.StringVar(&form.Description, "description", "", "description")
	flags.Int64Var(&form.Price, "price", 0, "prix en FCFA")
	flags.Int64Var(&form.Discount, "discount", 0, "réduction en FCFA")
	flags.StringVar(&form.Condition, "condition", form.Condition, "état (neuf, occasion)")
	flags.StringVar(&form.Category, "category", "", "catégorie")
	flags.IntVar(&form.Quantity, "qty", form.Quantity, "quantité en stock")
	flags.StringSliceVar(&form.Photos, "photo", nil, "référence de photo (répétable)")
	flags.BoolVar(&form.Deliverable, "deliverable", false, "livraison possible")
	if err := flags.Parse(args); err != nil {
		return err
	}

	product, err := app.account.PublishProduct(ctx, form)
	if err != nil {
		return err
	}
	fmt.Printf("Produit %s mis en vente (%s)\n", product.ID, product.Price.Format())
	return nil
}

func runWhoami(ctx context.Context, app *application) error {
	user := app.sessions.CurrentUser(ctx)
	if user == nil {
		fmt.Println("Aucune session active")
		return nil
	}
	fmt.Printf("%s <%s> %s — %s\n", user.Name, user.Email, money.FormatPhone(user.Phone), user.Role)
	return nil
}

func runProducts(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("products", pflag.ContinueOnError)
	limit := flags.Int("limit", 20, "nombre maximum de produits")
	search := flags.String("search", "", "terme de recherche")
	category := flags.String("category", "", "filtrer par catégorie")
	if err := flags.Parse(args); err != nil {
		return err
	}

	products, err := func() ([]api.Product, error) {
		if *search != "" || *category != "" {
			return app.catalog.Search(ctx, *search, *category)
		}
		return app.catalog.Browse(ctx, *limit)
	}()
	if err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Println("Aucun produit trouvé")
		return nil
	}
	for _, p := range products {
		marker := " "
		if app.catalog.IsFavorite(ctx, p.ID) {
			marker = "*"
		}
		fmt.Printf("%s %-12s %-30s %12s  %s\n", marker, p.ID, p.Name, p.Price.Format(), p.Category)
	}
	return nil
}

func runCartShow(app *application) error {
	lines := app.cart.Snapshot()
	if len(lines) == 0 {
		fmt.Println("Votre panier est vide")
		return nil
	}
	for _, line := range lines {
		fmt.Printf("%-12s %-30s x%-3d %12s\n", line.ProductID, line.Name, line.Quantity, line.Subtotal().Format())
	}
	totals := app.cart.Totals()
	fmt.Printf("Total: %d article(s), %s\n", totals.Items, totals.Price.Format())
	return nil
}

func runCartAdd(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("cart-add", pflag.ContinueOnError)
	product := flags.String("product", "", "identifiant du produit")
	name := flags.String("name", "", "nom du produit")
	price := flags.Int64("price", 0, "prix unitaire en FCFA")
	qty := flags.Int("qty", 1, "quantité")
	category := flags.String("category", "", "catégorie")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// fill the line from the catalog when only the id is given
	if *name == "" && *product != "" {
		if found, err := app.catalog.Product(ctx, *product); err == nil {
			*name = found.Name
			if *price == 0 {
				*price = int64(found.Price)
			}
			if *category == "" {
				*category = found.Category
			}
		}
	}

	return app.cart.AddOrUpdate(ctx, cart.Line{
		ProductID: *product,
		Name:      *name,
		UnitPrice: money.Amount(*price),
		Quantity:  *qty,
		Category:  *category,
	})
}

func runCartQty(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("cart-qty", pflag.ContinueOnError)
	product := flags.String("product", "", "identifiant du produit")
	qty := flags.Int("qty", 1, "nouvelle quantité")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return app.cart.SetQuantity(ctx, *product, *qty)
}

func runCartRemove(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("cart-remove", pflag.ContinueOnError)
	product := flags.String("product", "", "identifiant du produit")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return app.cart.Remove(ctx, *product)
}

func runCheckout(ctx context.Context, app *application) error {
	result, err := app.checkout.Execute(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Achat confirmé: %s x%d pour %s (transaction %s)\n",
		result.PurchasedLine.Name,
		result.PurchasedLine.Quantity,
		result.AmountCharged.Format(),
		result.TransactionID,
	)
	if result.PersistWarning != nil {
		fmt.Println("Attention: le panier n'a pas pu être sauvegardé localement.")
	}
	if result.Remaining.Items > 0 {
		fmt.Printf("Il reste %d article(s) dans votre panier (%s)\n",
			result.Remaining.Items, result.Remaining.Price.Format())
	}
	return nil
}

func runBalance(ctx context.Context, app *application) error {
	balance, err := app.wallet.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Solde: %s (%s)\n", balance.Balance.Format(), money.FormatPhone(balance.Phone))
	return nil
}

func runTransfer(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("transfer", pflag.ContinueOnError)
	to := flags.String("to", "", "numéro de téléphone du destinataire")
	amount := flags.Int64("amount", 0, "montant en FCFA")
	if err := flags.Parse(args); err != nil {
		return err
	}

	quote := app.wallet.QuoteTransfer(money.Amount(*amount))
	fmt.Printf("Montant %s + frais %s = %s\n", quote.Amount.Format(), quote.Fee.Format(), quote.Total.Format())

	receipt, err := app.wallet.Transfer(ctx, wallet.TransferInput{
		ToPhone: *to,
		Amount:  money.Amount(*amount),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Transfert vers %s confirmé (transaction %s)\n", receipt.ToPhone, receipt.TransactionID)
	return nil
}

func runPayBill(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("pay-bill", pflag.ContinueOnError)
	serviceType := flags.String("type", "", "type de service (ZIZ, STE, TAXE)")
	serviceID := flags.String("service", "", "identifiant du service")
	amount := flags.Int64("amount", 0, "montant en FCFA")
	reference := flags.String("reference", "", "référence de la facture")
	if err := flags.Parse(args); err != nil {
		return err
	}

	receipt, err := app.wallet.PayBill(ctx, wallet.BillInput{
		ServiceType: *serviceType,
		ServiceID:   *serviceID,
		Amount:      money.Amount(*amount),
		Reference:   *reference,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Facture %s payée: %s + frais %s (transaction %s)\n",
		receipt.ServiceType, receipt.Quote.Amount.Format(), receipt.Quote.Fee.Format(), receipt.TransactionID)
	return nil
}

func runServices(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("services", pflag.ContinueOnError)
	serviceType := flags.String("type", "", "filtrer par type (ZIZ, STE, TAXE)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	services, err := app.wallet.Services(ctx, *serviceType)
	if err != nil {
		return err
	}
	for _, svc := range services {
		fmt.Printf("%-12s %-8s %s\n", svc.ID, svc.Type, svc.Name)
	}
	return nil
}

func runHistory(ctx context.Context, app *application) error {
	transactions, err := app.wallet.History(ctx)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		fmt.Println("Aucune transaction")
		return nil
	}
	for _, tx := range transactions {
		fmt.Printf("%s  %-10s %12s  %s\n",
			tx.CreatedAt.Format("02/01/2006 15:04"), tx.Type, tx.Amount.Format(), tx.Details)
	}
	return nil
}

func runFavorites(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("favorites", pflag.ContinueOnError)
	toggle := flags.String("toggle", "", "basculer le favori pour ce produit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *toggle != "" {
		on, err := app.catalog.ToggleFavorite(ctx, *toggle)
		if err != nil {
			return err
		}
		if on {
			fmt.Printf("%s ajouté aux favoris\n", *toggle)
		} else {
			fmt.Printf("%s retiré des favoris\n", *toggle)
		}
		return nil
	}

	favorites := app.catalog.Favorites(ctx)
	if len(favorites) == 0 {
		fmt.Println("Aucun favori")
		return nil
	}
	fmt.Println(strings.Join(favorites, "\n"))
	return nil
}

func runSearches(ctx context.Context, app *application, args []string) error {
	flags := pflag.NewFlagSet("searches", pflag.ContinueOnError)
	clear := flags.Bool("clear", false, "vider l'historique de recherche")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *clear {
		return app.catalog.ClearRecentSearches(ctx)
	}
	history := app.catalog.RecentSearches(ctx)
	if len(history) == 0 {
		fmt.Println("Aucune recherche récente")
		return nil
	}
	fmt.Println(strings.Join(history, "\n"))
	return nil
}
