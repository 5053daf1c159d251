package main

import (
	"github.com/tanpawarit/Chative-Airline-Assistant/cmd"
	_ "github.com/tanpawarit/Chative-Airline-Assistant/pkg/logger/autoload"
)

func main() {
	cmd.Execute()
}
