package main

import (
	"context"
	"fmt"

	"github.com/trezcool/campus/core/user"
)

func (cli *commandLine) addUser(code, name, typ, pwd string) error {
	nu := user.NewUser{
		Code:     code,
		Name:     name,
		Type:     user.Type(typ),
		Password: pwd,
	}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("%s %q created: %s\n", usr.Type, usr.Code, usr.ID)
	return nil
}
