package yandex

type User struct {
	state *State

	UID      ID     `json:"uid"`
	Login    string `json:"login"`
	Name     string `json:"name"`
	Sex      string `json:"sex,omitempty"`
	Verified bool   `json:"verified"`
}

func (u *User) bind(s *State) *User {
	if nil != u {
		u.state = s
	}
	return u
}

// Account describes the owner of the token.
type Account struct {
	UID         ID
	Login       string
	FullName    string
	DisplayName string
	Region      int
	HasPlus     bool
}

type accountStatus struct {
	Account struct {
		UID         ID     `json:"uid"`
		Login       string `json:"login"`
		FullName    string `json:"fullName"`
		DisplayName string `json:"displayName"`
		Region      int    `json:"region"`
	} `json:"account"`
	Plus struct {
		HasPlus bool `json:"hasPlus"`
	} `json:"plus"`
}

func (s accountStatus) account() *Account {
	return &Account{
		UID:         s.Account.UID,
		Login:       s.Account.Login,
		FullName:    s.Account.FullName,
		DisplayName: s.Account.DisplayName,
		Region:      s.Account.Region,
		HasPlus:     s.Plus.HasPlus,
	}
}

// user converts the account to a User bound to s.
func (a *Account) user(s *State) *User {
	name := a.DisplayName
	if name == "" {
		name = a.FullName
	}
	return &User{state: s, UID: a.UID, Login: a.Login, Name: name, Sex: "", Verified: false}
}
