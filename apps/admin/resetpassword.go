package main

import (
	"context"

	"github.com/pkg/errors"
)

func (cli *commandLine) resetPassword(code, pwd string) error {
	_, err := cli.usrSvc.ResetPassword(context.Background(), code, pwd)
	return errors.Cause(err)
}
