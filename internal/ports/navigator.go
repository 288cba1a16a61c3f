package ports

// Navigator receives view changes requested by the session store: the home
// view after login/register, the login view after logout or when an
// anonymous visitor hits a protected route.
type Navigator interface {
	Redirect(route string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Redirect(route string) { f(route) }
