package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"maktab/backend/internal/dto"
	"maktab/backend/internal/model"
	"maktab/backend/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	userSvc service.UserService
	out     io.Writer
}

func (cli *commandLine) run(args []string) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(cli.out)
	phone := fs.String("phone", "", "手机号（9 位本地号码或带 998 前缀）")
	role := fs.String("role", string(model.RoleAdmin), "角色：ADMIN | TEACHER | STUDENT")
	name := fs.String("name", "", "姓名")
	password := fs.String("password", "", "密码（留空则从终端读取）")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	if *phone == "" {
		fs.Usage()
		return errHelp
	}

	pwd := *password
	if pwd == "" {
		fmt.Fprint(cli.out, "请输入密码: ")
		b, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		pwd = string(b)
	}
	if len(pwd) < 6 {
		return errors.New("密码长度不能少于 6 位")
	}

	user, err := cli.userSvc.Create(context.Background(), &dto.CreateUserRequest{
		Phone:    *phone,
		Password: pwd,
		Role:     strings.ToUpper(*role),
		FullName: *name,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "已创建用户 %s（%s）\n", user.Phone, user.Role)
	return nil
}
