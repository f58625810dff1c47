package kv

import (
	"fmt"

	"github.com/ValentinKolb/qpkv/cmd/util"
	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [table] [key]",
		Short: "Reads the item stored under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableID, k, err := parseTableKey(args[0], args[1])
			if err != nil {
				return err
			}
			item, err := rpcClient.GetItem(tableID, k)
			if err != nil {
				return err
			}
			if item == nil {
				fmt.Printf("key=%s, found=false\n", util.FormatKey(tableID, k))
				return nil
			}
			fmt.Printf("key=%s, found=true, value=%s\n", util.FormatKey(tableID, item.Key), item.Value)
			return nil
		},
	}
	putCmd = &cobra.Command{
		Use:   "put [table] [key] [value]",
		Short: "Stores a value under a key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableID, k, err := parseTableKey(args[0], args[1])
			if err != nil {
				return err
			}
			if err := rpcClient.PutItem(tableID, common.Item{Key: k, Value: args[2]}); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	scanCmd = &cobra.Command{
		Use:   "scan [table] [start]",
		Short: "Lists the items of a table in key order, starting at start (inclusive)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableID, err := util.ParseTable(args[0])
			if err != nil {
				return err
			}

			var start *key.Key
			if len(args) == 2 {
				k, err := util.ParseKey(tableID, args[1])
				if err != nil {
					return err
				}
				start = &k
			}

			limit := viper.GetUint("limit")
			backward := viper.GetBool("backward")

			var items []common.Item
			if viper.GetBool("all") {
				items, err = store.ScanAll(rpcClient, tableID, store.ScanOptions{Start: start, Backward: backward, PageSize: limit})
			} else {
				items, err = rpcClient.ScanItem(tableID, start, backward, limit)
			}
			if err != nil {
				return err
			}

			for _, item := range items {
				fmt.Printf("%s\t%s\n", util.FormatKey(tableID, item.Key), item.Value)
			}
			return nil
		},
	}
)

func init() {
	key := "limit"
	scanCmd.Flags().Uint(key, 10, util.WrapString("Maximum number of items per request"))
	key = "backward"
	scanCmd.Flags().Bool(key, false, util.WrapString("Scan in descending key order"))
	key = "all"
	scanCmd.Flags().Bool(key, false, util.WrapString("Continue with further requests until the end of the table is reached"))
}

func parseTableKey(tableText, keyText string) (key.Key, key.Key, error) {
	tableID, err := util.ParseTable(tableText)
	if err != nil {
		return key.Key{}, key.Key{}, err
	}
	k, err := util.ParseKey(tableID, keyText)
	if err != nil {
		return key.Key{}, key.Key{}, err
	}
	return tableID, k, nil
}
