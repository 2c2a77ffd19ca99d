package form

// Login is the sign-in form of both the storefront and the admin panel.
type Login struct {
	Username string `form:"username" validate:"notblank"`
	Password string `form:"password" validate:"notblank"`
}

// Registration is the storefront sign-up form.
type Registration struct {
	Username        string `form:"username" validate:"notblank"`
	Email           string `form:"email" validate:"notblank,email"`
	FirstName       string `form:"first_name" validate:"notblank"`
	LastName        string `form:"last_name" validate:"notblank"`
	Password        string `form:"password" validate:"notblank,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=Password"`
}

// Profile is the account details form.
type Profile struct {
	FirstName string `form:"first_name" validate:"notblank"`
	LastName  string `form:"last_name" validate:"notblank"`
	Email     string `form:"email" validate:"notblank,email"`
	Phone     string `form:"phone"`
	Address   string `form:"address"`
}

// Product is the admin add/edit product form. Numeric fields hold the raw
// text of their inputs.
type Product struct {
	Name          string `form:"name" validate:"notblank"`
	Description   string `form:"description"`
	Price         string `form:"price" validate:"notblank,number,positive"`
	StockQuantity string `form:"stock_quantity" validate:"notblank,number,atleast=0"`
	CategoryID    string `form:"category_id" validate:"number,atleast=1"`
	ImageURL      string `form:"image_url"`
}

// Category is the admin add/edit category form.
type Category struct {
	Name        string `form:"name" validate:"notblank"`
	Description string `form:"description"`
}
